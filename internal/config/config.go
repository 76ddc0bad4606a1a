// Package config holds the literal tuning constants and file-layout paths
// used across the indexing pipeline and the query engine. There is no
// parser and no environment-variable binding here on purpose: every value
// is a compile-time constant, and the only thing that varies between runs
// is where files live on disk.
package config

// BM25Parameters are the relevance-scoring knobs shared by every query
// evaluation.
type BM25Parameters struct {
	K1 float64
	B  float64
}

// DefaultBM25Parameters returns the reference tuning (k1=1.5, b=0.75).
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{K1: 1.5, B: 0.75}
}

// RankingParameters fuses BM25 with the PageRank authority prior.
type RankingParameters struct {
	BM25          BM25Parameters
	PageRankWeight float64
	MaxResults    int
}

// DefaultRankingParameters is the reference ranking configuration.
func DefaultRankingParameters() RankingParameters {
	return RankingParameters{
		BM25:           DefaultBM25Parameters(),
		PageRankWeight: 50.0,
		MaxResults:     20,
	}
}

// PageRankParameters controls the iterative authority computation.
type PageRankParameters struct {
	Damping              float64
	MaxIterations        int
	ConvergenceTolerance float64
}

// DefaultPageRankParameters is the reference PageRank configuration.
func DefaultPageRankParameters() PageRankParameters {
	return PageRankParameters{
		Damping:              0.85,
		MaxIterations:        50,
		ConvergenceTolerance: 1e-9,
	}
}

// WordsPerBarrel is the fixed number of term-ids held by one barrel shard.
const WordsPerBarrel = 50000

// TrieFrequencyFloor is the noise floor below which a term is excluded
// from the autocomplete trie.
const TrieFrequencyFloor = 50

// TrieSuggestionCount is how many suggestions the trie query returns.
const TrieSuggestionCount = 5

// AssocWindowSize is the sliding co-occurrence window width used by the
// term-association trainer.
const AssocWindowSize = 5

// AssocMinWordFreq is the minimum corpus frequency for a word to be
// learned by the association trainer.
const AssocMinWordFreq = 50

// AssocTopK is how many associated terms are retained per word.
const AssocTopK = 20

// AssocMaxVocabSize caps how many distinct stems the association trainer
// keeps in memory during the co-occurrence pass.
const AssocMaxVocabSize = 50000

// MaxInMemoryPostings bounds how many (doc-id, freq) postings the
// in-memory inverter will accumulate before failing with
// invert.ErrOutOfMemory, per 4.D: "Fails with OutOfMemory when W or total
// postings exceed RAM; in that case the implementer must substitute an
// external-sort BSBI variant." Set well above any corpus this reference
// deployment processes.
const MaxInMemoryPostings = 50_000_000

// Paths names the on-disk file layout for one index generation. Builders
// and the query engine are handed a Paths value rather than reading global
// constants, so a hot-swap reload can point at a staging directory without
// any process-wide state.
type Paths struct {
	CleanDataset     string
	GraphFile        string
	LexiconFile      string
	IDMapFile        string
	ForwardIndex     string
	InvertedIndex    string
	DocLengths       string
	BarrelDir        string
	MetadataFile     string
	PageRankFile     string
	TrieFile         string
	AssociationsFile string
	SignalFile       string
}

// DefaultPaths returns the conventional file layout rooted at dir.
func DefaultPaths(dir string) Paths {
	join := func(name string) string {
		if dir == "" {
			return name
		}
		return dir + "/" + name
	}
	return Paths{
		CleanDataset:     join("clean_dataset.txt"),
		GraphFile:        join("graph.txt"),
		LexiconFile:      join("lexicon.bin"),
		IDMapFile:        join("id_map.txt"),
		ForwardIndex:     join("forward_index.bin"),
		InvertedIndex:    join("inverted_index.bin"),
		DocLengths:       join("doc_lengths.bin"),
		BarrelDir:        join("barrels"),
		MetadataFile:     join("doc_metadata.txt"),
		PageRankFile:     join("pagerank_scores.txt"),
		TrieFile:         join("trie.bin"),
		AssociationsFile: join("associations.json"),
		SignalFile:       join("swap.signal"),
	}
}
