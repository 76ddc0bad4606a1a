package trie

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestBuild_DropsBelowFloor(t *testing.T) {
	freqs := map[string]uint32{
		"cat":   100,
		"car":   10, // below floor of 50
		"dog":   75,
	}
	flat := Build(freqs, 50)

	var ends []string
	var walk func(idx int32, prefix string)
	walk = func(idx int32, prefix string) {
		n := flat[idx]
		if n.IsEnd {
			ends = append(ends, prefix)
		}
		for c := n.ChildIndex; c != -1; c = flat[c].SiblingIndex {
			walk(c, prefix+string(flat[c].Key))
		}
	}
	walk(0, "")

	want := []string{"cat", "dog"}
	if len(ends) != len(want) {
		t.Fatalf("got terminal terms %v, want %v", ends, want)
	}
	seen := make(map[string]bool)
	for _, e := range ends {
		seen[e] = true
	}
	for _, w := range want {
		if !seen[w] {
			t.Errorf("missing expected term %q in %v", w, ends)
		}
	}
}

func TestBuild_ChildrenSortedAscending(t *testing.T) {
	freqs := map[string]uint32{
		"zebra": 60,
		"apple": 60,
		"mango": 60,
	}
	flat := Build(freqs, 50)

	root := flat[0]
	var keys []byte
	for c := root.ChildIndex; c != -1; c = flat[c].SiblingIndex {
		keys = append(keys, flat[c].Key)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			t.Errorf("children not sorted ascending: %v", keys)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	freqs := map[string]uint32{"alpha": 60, "beta": 70, "alpine": 80}
	flat := Build(freqs, 50)

	path := filepath.Join(t.TempDir(), "trie.bin")
	if err := Save(path, flat); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(flat, loaded) {
		t.Errorf("Load() = %+v, want %+v", loaded, flat)
	}
}

func TestSuggest_PrefixMatch(t *testing.T) {
	freqs := map[string]uint32{
		"alpha":  100,
		"alpine": 80,
		"alarm":  60,
		"beta":   90,
	}
	flat := Build(freqs, 50)

	got := Suggest(flat, "al")
	want := []string{"alpha", "alpine", "alarm"}
	if len(got) != len(want) {
		t.Fatalf("Suggest(\"al\") = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("Suggest(\"al\")[%d] = %q, want %q (frequency order)", i, got[i], w)
		}
	}
}

func TestSuggest_UnknownPrefixReturnsNil(t *testing.T) {
	freqs := map[string]uint32{"alpha": 100}
	flat := Build(freqs, 50)

	got := Suggest(flat, "xyz")
	if got != nil {
		t.Errorf("Suggest on unknown prefix = %v, want nil", got)
	}
}

func TestSuggest_RespectsTopKLimit(t *testing.T) {
	freqs := map[string]uint32{
		"test1": 100, "test2": 99, "test3": 98, "test4": 97,
		"test5": 96, "test6": 95, "test7": 94,
	}
	flat := Build(freqs, 50)

	got := Suggest(flat, "test")
	if len(got) != 5 {
		t.Fatalf("Suggest returned %d results, want 5 (TrieSuggestionCount)", len(got))
	}
	want := []string{"test1", "test2", "test3", "test4", "test5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(\"test\") = %v, want %v", got, want)
	}
}

func TestSuggest_ExactTermIncludedAlongsideExtensions(t *testing.T) {
	freqs := map[string]uint32{"cat": 90, "catalog": 95}
	flat := Build(freqs, 50)

	got := Suggest(flat, "cat")
	want := []string{"catalog", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(\"cat\") = %v, want %v", got, want)
	}
}
