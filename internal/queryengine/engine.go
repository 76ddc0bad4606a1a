// Package queryengine implements component 4.H: the conjunctive
// BM25+PageRank query evaluator. It loads the lexicon, doc-lengths,
// metadata, PageRank scores, and flat trie into memory at construction
// time and fetches posting lists from on-disk barrels per request —
// mirroring BarrelSearcher in searchengine.cpp, generalized from its
// single-process global state into an explicit, swappable Engine value.
package queryengine

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/crankysmh47/Rummager/internal/barrel"
	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/forwardindex"
	"github.com/crankysmh47/Rummager/internal/lexicon"
	"github.com/crankysmh47/Rummager/internal/metadata"
	"github.com/crankysmh47/Rummager/internal/pagerank"
	"github.com/crankysmh47/Rummager/internal/postings"
	"github.com/crankysmh47/Rummager/internal/tokenize"
	"github.com/crankysmh47/Rummager/internal/trie"
)

// Result is one scored hit, pairing a doc-id with its fused score.
type Result struct {
	DocID uint32
	Score float64
}

// Engine holds one fully-loaded index generation. It is immutable once
// built: the hot-swap coordinator builds a fresh Engine for each staged
// generation and atomically swaps the pointer rather than mutating one in
// place, per 4.I.
type Engine struct {
	paths      config.Paths
	lex        *lexicon.Lexicon
	docLengths []uint32
	avgDL      float64
	meta       *metadata.Store
	pageRank   []float64
	trieData   []trie.FlatNode // nil if absent; suggestions disabled
	ranking    config.RankingParameters
}

// Load builds an Engine from paths. Missing lexicon, doc-lengths,
// metadata, or barrel directory is fatal. Missing PageRank scores or trie
// data is non-fatal: scores default to 0 and suggestions are disabled.
func Load(paths config.Paths, ranking config.RankingParameters) (*Engine, error) {
	lex, err := lexicon.Load(paths.LexiconFile)
	if err != nil {
		return nil, fmt.Errorf("queryengine: load lexicon: %w", err)
	}

	lengths, err := forwardindex.LoadLengths(paths.DocLengths)
	if err != nil {
		return nil, fmt.Errorf("queryengine: load doc lengths: %w", err)
	}
	var sum uint64
	for _, l := range lengths {
		sum += uint64(l)
	}
	var avgDL float64
	if len(lengths) > 0 {
		avgDL = float64(sum) / float64(len(lengths))
	}

	meta, err := metadata.Load(paths.MetadataFile)
	if err != nil {
		return nil, fmt.Errorf("queryengine: load metadata: %w", err)
	}

	if _, err := os.Stat(paths.BarrelDir); err != nil {
		return nil, fmt.Errorf("queryengine: barrel directory: %w", err)
	}

	pr, err := pagerank.Load(paths.PageRankFile, len(lengths))
	if err != nil {
		pr = make([]float64, len(lengths)) // non-fatal: all zero
	}

	var trieData []trie.FlatNode
	if loaded, err := trie.Load(paths.TrieFile); err == nil {
		trieData = loaded
	}

	return &Engine{
		paths:      paths,
		lex:        lex,
		docLengths: lengths,
		avgDL:      avgDL,
		meta:       meta,
		pageRank:   pr,
		trieData:   trieData,
		ranking:    ranking,
	}, nil
}

// Options configures one query evaluation.
type Options struct {
	CategoryFilter string // substring match against metadata.Category; "" disables
	SortByDate     bool   // sort by metadata.Date descending instead of score
}

// Query evaluates q under conjunctive AND semantics: tokenizes and
// deduplicates terms, requires every term to resolve in the lexicon and
// yield a non-empty posting list, intersects small-list-first via
// two-pointer merge, applies the optional category filter, scores the
// survivors with BM25 fused with the PageRank prior, sorts, and truncates
// to ranking.MaxResults.
func (e *Engine) Query(q string, opts Options) []Result {
	terms := dedupe(tokenize.Tokens(q))
	if len(terms) == 0 {
		return nil
	}

	type termPostings struct {
		termID uint32
		idf    float64
		list   []postings.Posting
	}

	tp := make([]termPostings, 0, len(terms))
	for _, term := range terms {
		id, ok := e.lex.Lookup(term)
		if !ok {
			return nil // any absent term empties the result
		}
		list := barrel.Fetch(e.paths.BarrelDir, id, config.WordsPerBarrel)
		if len(list) == 0 {
			return nil // any empty posting list empties the result
		}
		n := float64(len(list))
		D := float64(len(e.docLengths))
		idf := math.Log((D-n+0.5)/(n+0.5) + 1.0)
		tp = append(tp, termPostings{termID: id, idf: idf, list: list})
	}

	sort.Slice(tp, func(i, j int) bool { return len(tp[i].list) < len(tp[j].list) })

	candidates := make([]uint32, len(tp[0].list))
	for i, p := range tp[0].list {
		candidates[i] = p.DocID
	}
	for _, other := range tp[1:] {
		candidates = intersect(candidates, other.list)
		if len(candidates) == 0 {
			return nil
		}
	}

	if opts.CategoryFilter != "" {
		candidates = filterByCategory(candidates, e.meta, opts.CategoryFilter)
		if len(candidates) == 0 {
			return nil
		}
	}

	results := make([]Result, 0, len(candidates))
	for _, docID := range candidates {
		var score float64
		for _, term := range tp {
			tf, ok := lookupFreq(term.list, docID)
			if !ok {
				continue
			}
			score += term.idf * bm25Term(float64(tf), e.lengthOf(docID), e.avgDL, e.ranking.BM25)
		}
		if int(docID) < len(e.pageRank) {
			score += e.ranking.PageRankWeight * e.pageRank[docID]
		}
		results = append(results, Result{DocID: docID, Score: score})
	}

	if opts.SortByDate {
		sort.Slice(results, func(i, j int) bool {
			return dateOf(e.meta, results[i].DocID) > dateOf(e.meta, results[j].DocID)
		})
	} else {
		sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	}

	if len(results) > e.ranking.MaxResults {
		results = results[:e.ranking.MaxResults]
	}
	return results
}

// Metadata exposes the loaded metadata store for result rendering.
func (e *Engine) Metadata(docID uint32) (metadata.Record, bool) {
	return e.meta.Record(docID)
}

// Suggest returns up to config.TrieSuggestionCount completions for prefix,
// or nil if no trie data was loaded.
func (e *Engine) Suggest(prefix string) []string {
	if e.trieData == nil {
		return nil
	}
	return trie.Suggest(e.trieData, prefix)
}

// lengthOf returns the document's token length, substituting avgDL for an
// out-of-range doc-id or a zero-length gap (an id present in the ID map but
// absent from the dataset), per 4.C/OutOfRange in 7.
func (e *Engine) lengthOf(docID uint32) float64 {
	if int(docID) >= len(e.docLengths) || e.docLengths[docID] == 0 {
		return e.avgDL
	}
	return float64(e.docLengths[docID])
}

// bm25Term computes one term's BM25 contribution (excluding idf, folded
// in by the caller so idf is computed once per term rather than once per
// doc-term pair).
func bm25Term(tf, dl, avgDL float64, p config.BM25Parameters) float64 {
	num := tf * (p.K1 + 1)
	den := tf + p.K1*(1-p.B+p.B*(dl/avgDL))
	return num / den
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// intersect folds list (sorted ascending by DocID) into candidates
// (sorted ascending) via a standard two-pointer merge.
func intersect(candidates []uint32, list []postings.Posting) []uint32 {
	out := candidates[:0]
	i, j := 0, 0
	for i < len(candidates) && j < len(list) {
		switch {
		case candidates[i] == list[j].DocID:
			out = append(out, candidates[i])
			i++
			j++
		case candidates[i] < list[j].DocID:
			i++
		default:
			j++
		}
	}
	return out
}

// lookupFreq binary-searches list (sorted ascending by DocID) for docID.
func lookupFreq(list []postings.Posting, docID uint32) (uint32, bool) {
	i := sort.Search(len(list), func(i int) bool { return list[i].DocID >= docID })
	if i < len(list) && list[i].DocID == docID {
		return list[i].Freq, true
	}
	return 0, false
}

func filterByCategory(candidates []uint32, meta *metadata.Store, filter string) []uint32 {
	out := candidates[:0]
	for _, docID := range candidates {
		rec, ok := meta.Record(docID)
		if !ok {
			continue
		}
		if strings.Contains(rec.Category, filter) {
			out = append(out, docID)
		}
	}
	return out
}

func dateOf(meta *metadata.Store, docID uint32) string {
	rec, ok := meta.Record(docID)
	if !ok {
		return "0000"
	}
	return rec.Date
}
