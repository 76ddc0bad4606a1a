package pagerank

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/crankysmh47/Rummager/internal/config"
)

func writeGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ScoresSumToOne(t *testing.T) {
	// A simple 3-node cycle: 0 -> 1 -> 2 -> 0
	path := writeGraph(t, "3\n0 1 1\n1 1 2\n2 1 0\n")
	g, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	scores := Run(g, config.DefaultPageRankParameters())
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("scores sum to %v, want ~1.0", sum)
	}
}

func TestRun_SymmetricCycleIsUniform(t *testing.T) {
	path := writeGraph(t, "3\n0 1 1\n1 1 2\n2 1 0\n")
	g, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	scores := Run(g, config.DefaultPageRankParameters())
	for i := 1; i < len(scores); i++ {
		if math.Abs(scores[i]-scores[0]) > 1e-6 {
			t.Errorf("symmetric cycle should have uniform scores, got %v", scores)
		}
	}
}

func TestRun_DanglingNodeDistributesEvenly(t *testing.T) {
	// Node 1 has no outbound links (dangling).
	path := writeGraph(t, "2\n0 1 1\n1 0\n")
	g, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	scores := Run(g, config.DefaultPageRankParameters())
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	// With node 1's rank spread d·PR[1]/2 onto each node, the fixed point is
	// PR[0] = 0.075 + 0.425·PR[1] and PR[1] = 1 - PR[0]: PR[0] = 0.5/1.425.
	want := []float64{0.5 / 1.425, 0.925 / 1.425}
	for i, w := range want {
		if math.Abs(scores[i]-w) > 1e-6 {
			t.Errorf("score[%d] = %v, want %v", i, scores[i], w)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.7}
	path := filepath.Join(t.TempDir(), "pagerank_scores.txt")
	if err := Save(path, scores); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, want := range scores {
		if math.Abs(loaded[i]-want) > 1e-9 {
			t.Errorf("score[%d] = %v, want %v", i, loaded[i], want)
		}
	}
}

func TestLoad_MissingIDsDefaultToZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagerank_scores.txt")
	if err := os.WriteFile(path, []byte("0 0.9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded[1] != 0 || loaded[2] != 0 {
		t.Errorf("unseen ids should default to 0, got %v", loaded)
	}
}
