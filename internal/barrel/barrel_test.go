package barrel

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/crankysmh47/Rummager/internal/forwardindex"
	"github.com/crankysmh47/Rummager/internal/idmap"
	"github.com/crankysmh47/Rummager/internal/invert"
	"github.com/crankysmh47/Rummager/internal/lexicon"
	"os"
)

func buildInvertedIndex(t *testing.T) (string, *lexicon.Lexicon) {
	t.Helper()
	dir := t.TempDir()
	dataset := filepath.Join(dir, "clean_dataset.txt")
	content := "A\talpha beta gamma\nB\talpha gamma gamma\nC\tdelta\n"
	if err := os.WriteFile(dataset, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	m := idmap.Build([]string{"A", "B", "C"})
	lex := lexicon.New()
	lex.GetOrAssign("alpha")
	lex.GetOrAssign("beta")
	lex.GetOrAssign("gamma")
	lex.GetOrAssign("delta")

	fwdPath := filepath.Join(dir, "forward_index.bin")
	lenPath := filepath.Join(dir, "doc_lengths.bin")
	if err := forwardindex.Build(dataset, fwdPath, lenPath, m, lex); err != nil {
		t.Fatalf("forwardindex.Build: %v", err)
	}
	invPath := filepath.Join(dir, "inverted_index.bin")
	if err := invert.Build(fwdPath, invPath, lex.Size()); err != nil {
		t.Fatalf("invert.Build: %v", err)
	}
	return invPath, lex
}

func TestBuildFetch_MatchesMonolithicInvertedIndex(t *testing.T) {
	invPath, _ := buildInvertedIndex(t)
	barrelDir := filepath.Join(t.TempDir(), "barrels")

	const wordsPerBarrel = 2 // small width to exercise multiple barrels
	if err := Build(invPath, barrelDir, wordsPerBarrel); err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := invert.OpenReader(invPath)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	var termID uint32
	for {
		want, err := r.Next()
		if err != nil {
			break
		}
		got := Fetch(barrelDir, termID, wordsPerBarrel)
		if len(want) == 0 {
			want = nil
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("term %d: Fetch() = %v, want %v", termID, got, want)
		}
		termID++
	}
}

func TestLocate_MatchesFetchLength(t *testing.T) {
	invPath, lex := buildInvertedIndex(t)
	barrelDir := filepath.Join(t.TempDir(), "barrels")
	const wordsPerBarrel = 2
	if err := Build(invPath, barrelDir, wordsPerBarrel); err != nil {
		t.Fatalf("Build: %v", err)
	}

	alphaID, _ := lex.Lookup("alpha")
	list := Fetch(barrelDir, alphaID, wordsPerBarrel)
	_, count, ok := Locate(barrelDir, alphaID, wordsPerBarrel)
	if !ok {
		t.Fatalf("Locate reported not found for a term with postings")
	}
	if int(count) != len(list) {
		t.Errorf("Locate count = %d, want %d (matching Fetch)", count, len(list))
	}
}

func TestLocate_UnknownTermReportsNotFound(t *testing.T) {
	_, _, ok := Locate(t.TempDir(), 999, 50000)
	if ok {
		t.Error("Locate reported found for a missing barrel")
	}
}

func TestFetch_UnknownBarrelReturnsEmpty(t *testing.T) {
	got := Fetch(t.TempDir(), 999, 50000)
	if got != nil {
		t.Errorf("Fetch on missing barrel = %v, want nil", got)
	}
}

func TestBuild_RemovesStaleShards(t *testing.T) {
	invPath, lex := buildInvertedIndex(t)
	_ = lex
	barrelDir := filepath.Join(t.TempDir(), "barrels")
	if err := os.MkdirAll(barrelDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(barrelDir, "barrel_99.bin")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Build(invPath, barrelDir, 2); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale shard barrel_99.bin was not removed")
	}
}

func TestBuild_DeterministicOutput(t *testing.T) {
	invPath, _ := buildInvertedIndex(t)
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")
	if err := Build(invPath, dirA, 2); err != nil {
		t.Fatalf("Build a: %v", err)
	}
	if err := Build(invPath, dirB, 2); err != nil {
		t.Fatalf("Build b: %v", err)
	}

	entriesA, _ := os.ReadDir(dirA)
	for _, e := range entriesA {
		a, err := os.ReadFile(filepath.Join(dirA, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s differs between identical builds", e.Name())
		}
	}
}
