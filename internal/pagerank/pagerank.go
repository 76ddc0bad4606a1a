// Package pagerank implements component 4.F: damped iterative PageRank
// over the static document citation graph.
package pagerank

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/crankysmh47/Rummager/internal/config"
)

// Graph is an adjacency-list representation with a parallel out-degree
// array, per `# 9`'s design note: "Vec<Vec<u32>> adjacency plus an
// out-degree array; no pointers."
type Graph struct {
	adjacency [][]uint32
	outDegree []int
}

// N returns the node count.
func (g *Graph) N() int {
	return len(g.adjacency)
}

// LoadGraph reads `N` on line 1, then per source node a line
// `u deg v1 … v_deg`. Missing or repeated edges are accepted verbatim.
func LoadGraph(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pagerank: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var n int
	if _, err := fmt.Fscan(r, &n); err != nil {
		return nil, fmt.Errorf("pagerank: read node count: %w", err)
	}

	g := &Graph{
		adjacency: make([][]uint32, n),
		outDegree: make([]int, n),
	}
	for {
		var u, degree int
		_, err := fmt.Fscan(r, &u, &degree)
		if err != nil {
			break // end of input
		}
		g.outDegree[u] = degree
		g.adjacency[u] = make([]uint32, degree)
		for i := 0; i < degree; i++ {
			var v uint32
			fmt.Fscan(r, &v)
			g.adjacency[u][i] = v
		}
	}
	return g, nil
}

// Run iterates PR_next[i] = (1-d)/N, then distributes d·PR[i]/deg(i) to
// each node's neighbors, folds in the dangling-node share, and stops when
// the Manhattan-distance delta falls below the convergence tolerance or
// MaxIterations is reached.
func Run(g *Graph, params config.PageRankParameters) []float64 {
	n := g.N()
	if n == 0 {
		return nil
	}

	pr := make([]float64, n)
	for i := range pr {
		pr[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)

	base := (1.0 - params.Damping) / float64(n)
	for iter := 0; iter < params.MaxIterations; iter++ {
		for i := range next {
			next[i] = base
		}

		var dangling float64
		for i := 0; i < n; i++ {
			if g.outDegree[i] == 0 {
				dangling += pr[i]
				continue
			}
			share := pr[i] / float64(g.outDegree[i])
			for _, v := range g.adjacency[i] {
				next[v] += params.Damping * share
			}
		}

		danglingShare := params.Damping * dangling / float64(n)
		for i := range next {
			next[i] += danglingShare
		}

		var delta float64
		for i := range next {
			delta += math.Abs(next[i] - pr[i])
		}
		pr, next = next, pr

		slog.Info("pagerank iteration", slog.Int("iteration", iter+1), slog.Float64("delta", delta))
		if delta < params.ConvergenceTolerance {
			break
		}
	}
	return pr
}

// Save writes one `<doc-id> <score>` line per node in id order.
func Save(path string, scores []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pagerank: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, score := range scores {
		if _, err := fmt.Fprintf(w, "%d %g\n", i, score); err != nil {
			return fmt.Errorf("pagerank: write line: %w", err)
		}
	}
	return w.Flush()
}

// Load reads a pagerank_scores.txt file into a dense array of size docCount.
// Absent scalars (ids beyond what the file covers) default to 0, per the
// OutOfRange error-kind policy in `# 7`.
func Load(path string, docCount int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pagerank: open %s: %w", path, err)
	}
	defer f.Close()

	scores := make([]float64, docCount)
	r := bufio.NewReader(f)
	for {
		var id int
		var score float64
		if _, err := fmt.Fscan(r, &id, &score); err != nil {
			break
		}
		if id >= 0 && id < docCount {
			scores[id] = score
		}
	}
	return scores, nil
}
