package queryengine

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/crankysmh47/Rummager/internal/config"
)

// Coordinator implements component 4.I: it holds the live query-serving
// Engine behind an atomic pointer and swaps it for a freshly loaded one
// whenever a signal file appears. The swap itself is the only shared
// state between the poll and a concurrent query: atomic.Pointer gives
// every in-flight Query a consistent single generation, with no lock
// a reader needs to hold.
type Coordinator struct {
	current atomic.Pointer[Engine]
	paths   config.Paths
	ranking config.RankingParameters
}

// NewCoordinator performs the initial load (fatal errors propagate, per
// 4.H's startup failure semantics) and returns a Coordinator ready to serve.
func NewCoordinator(paths config.Paths, ranking config.RankingParameters) (*Coordinator, error) {
	engine, err := Load(paths, ranking)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{paths: paths, ranking: ranking}
	c.current.Store(engine)
	return c, nil
}

// Current returns the presently live Engine. Safe to call concurrently
// with PollOnce.
func (c *Coordinator) Current() *Engine {
	return c.current.Load()
}

// PollOnce checks for the signal file named in paths.SignalFile. If
// absent, it is a no-op. If present, its first line names the new barrel
// directory (trailing separator normalized); PollOnce reloads lexicon,
// lengths, metadata, PageRank, and trie from their well-known paths plus
// the new barrel directory, swaps the atomic pointer on success, and
// deletes the signal file. A reload failure leaves the current Engine
// live and the signal file in place, so the builder can inspect it and
// retry rather than silently losing the swap request.
func (c *Coordinator) PollOnce() (swapped bool, err error) {
	f, err := os.Open(c.paths.SignalFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("hotswap: open signal file: %w", err)
	}

	scanner := bufio.NewScanner(f)
	var barrelDir string
	if scanner.Scan() {
		barrelDir = strings.TrimRight(scanner.Text(), "/\\")
	}
	f.Close()
	if barrelDir == "" {
		return false, fmt.Errorf("hotswap: signal file %s has no barrel directory line", c.paths.SignalFile)
	}

	staged := c.paths
	staged.BarrelDir = barrelDir

	engine, err := Load(staged, c.ranking)
	if err != nil {
		return false, fmt.Errorf("hotswap: reload failed, signal file left in place: %w", err)
	}

	c.current.Store(engine)
	if err := os.Remove(c.paths.SignalFile); err != nil {
		slog.Warn("hotswap: swap succeeded but signal file removal failed", slog.String("error", err.Error()))
	}
	slog.Info("hotswap: index generation swapped", slog.String("barrel_dir", barrelDir))
	return true, nil
}
