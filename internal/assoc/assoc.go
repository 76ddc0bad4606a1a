// Package assoc implements the term-association trainer supplemented from
// train_associations.cpp: a sliding-window co-occurrence model over the
// stemmed corpus vocabulary, exposed to the query REPL as `/related`.
package assoc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/crankysmh47/Rummager/internal/tokenize"
)

// Record is one word's exported association list, ordered by
// co-occurrence count descending.
type Record struct {
	Term         string       `json:"term"`
	Associations []Association `json:"associations"`
}

// Association pairs a co-occurring stem with how often it shared a
// window with Record.Term.
type Association struct {
	Stem  string `json:"stem"`
	Count int    `json:"count"`
}

// Params tunes the trainer; see config.Assoc* for the reference values.
type Params struct {
	WindowSize   int
	MinWordFreq  int
	MaxVocabSize int
	TopK         int
}

// Train performs the two-pass algorithm from train_associations.cpp:
// pass 1 stems every kept token and counts global frequency, prunes to
// the MaxVocabSize most frequent stems clearing MinWordFreq; pass 2
// re-scans and accumulates a symmetric co-occurrence count within a
// WindowSize window of each kept token, skipping tokens outside the
// pruned vocabulary.
func Train(datasetPath string, params Params) (map[string]map[string]int, error) {
	vocabFreq, err := countFrequencies(datasetPath)
	if err != nil {
		return nil, err
	}

	valid := pruneVocab(vocabFreq, params.MinWordFreq, params.MaxVocabSize)
	slog.Info("assoc vocabulary pruned", slog.Int("total", len(vocabFreq)), slog.Int("kept", len(valid)))

	cooc, err := buildCooccurrence(datasetPath, valid, params.WindowSize)
	if err != nil {
		return nil, err
	}
	return cooc, nil
}

func countFrequencies(datasetPath string) (map[string]int, error) {
	f, err := os.Open(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("assoc: open %s: %w", datasetPath, err)
	}
	defer f.Close()

	freq := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		for _, stem := range stemLine(scanner.Text()) {
			freq[stem]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("assoc: scan: %w", err)
	}
	return freq, nil
}

// stemLine tokenizes a whole dataset line (external-id and content both;
// the original scans every whitespace-separated word, not just content
// after the tab) and stems each surviving token.
func stemLine(line string) []string {
	tokens := tokenize.Tokens(line)
	stems := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) <= 2 {
			continue
		}
		stems = append(stems, snowballeng.Stem(t, false))
	}
	return stems
}

// pruneVocab keeps the MaxVocabSize most frequent stems clearing
// MinWordFreq, breaking frequency ties lexicographically for determinism.
func pruneVocab(freq map[string]int, minFreq, maxSize int) map[string]bool {
	type entry struct {
		stem  string
		count int
	}
	var entries []entry
	for stem, count := range freq {
		if count >= minFreq {
			entries = append(entries, entry{stem, count})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].stem < entries[j].stem
	})
	if len(entries) > maxSize {
		entries = entries[:maxSize]
	}

	valid := make(map[string]bool, len(entries))
	for _, e := range entries {
		valid[e.stem] = true
	}
	return valid
}

func buildCooccurrence(datasetPath string, valid map[string]bool, windowSize int) (map[string]map[string]int, error) {
	f, err := os.Open(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("assoc: open %s: %w", datasetPath, err)
	}
	defer f.Close()

	cooc := make(map[string]map[string]int, len(valid))
	for stem := range valid {
		cooc[stem] = make(map[string]int)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var kept []string
		for _, stem := range stemLine(scanner.Text()) {
			if valid[stem] {
				kept = append(kept, stem)
			}
		}
		for i, target := range kept {
			start := max(0, i-windowSize)
			end := min(len(kept)-1, i+windowSize)
			for j := start; j <= end; j++ {
				if i == j {
					continue
				}
				cooc[target][kept[j]]++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("assoc: scan: %w", err)
	}
	return cooc, nil
}

// Export writes one Record per word in cooc, each trimmed to the TopK
// strongest associations, as a JSON array to path.
func Export(path string, cooc map[string]map[string]int, topK int) error {
	words := make([]string, 0, len(cooc))
	for w := range cooc {
		words = append(words, w)
	}
	sort.Strings(words)

	records := make([]Record, 0, len(words))
	for _, w := range words {
		records = append(records, Record{Term: w, Associations: topAssociations(cooc[w], topK)})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("assoc: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("assoc: encode: %w", err)
	}
	return nil
}

func topAssociations(counts map[string]int, topK int) []Association {
	assocs := make([]Association, 0, len(counts))
	for stem, count := range counts {
		assocs = append(assocs, Association{Stem: stem, Count: count})
	}
	sort.Slice(assocs, func(i, j int) bool {
		if assocs[i].Count != assocs[j].Count {
			return assocs[i].Count > assocs[j].Count
		}
		return assocs[i].Stem < assocs[j].Stem
	})
	if len(assocs) > topK {
		assocs = assocs[:topK]
	}
	return assocs
}

// Load reads an associations.json file previously written by Export into
// a lookup from term to its ranked associations.
func Load(path string) (map[string][]Association, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assoc: open %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("assoc: decode %s: %w", path, err)
	}
	lookup := make(map[string][]Association, len(records))
	for _, r := range records {
		lookup[r.Term] = r.Associations
	}
	return lookup, nil
}

// Related looks up prefix-free related stems for a raw query term: it
// lower-cases and stems term the same way the trainer did, since the
// association index is keyed by stem, not surface form.
func Related(index map[string][]Association, term string) []Association {
	stem := snowballeng.Stem(strings.ToLower(term), false)
	return index[stem]
}
