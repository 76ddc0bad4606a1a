package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/crankysmh47/Rummager/internal/config"
)

// dataDir is the directory holding one index generation's files
// (clean_dataset.txt, lexicon.bin, barrels/, and so on), named per
// config.DefaultPaths.
var dataDir string

// Execute builds and runs the rummager root command.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "rummager",
		Short: "Disk-backed full-text search engine over scholarly-article records",
		Long: `rummager builds and serves a BM25+PageRank search index over a static
corpus of scholarly-article records: a barrel-sharded inverted index, an
autocomplete trie, and a hot-swappable query server.

Build pipeline (run in order against a fresh data directory):
  build-idmap      assign internal doc-ids from external ids
  build-lexicon    assign term ids over the corpus vocabulary
  build-forward    per-document term-frequency records + doc lengths
  build-invert     pivot the forward index into per-term posting lists
  build-barrels    shard the inverted index into fixed-width barrels
  build-pagerank   compute authority scores from the citation graph
  build-trie       build the autocomplete trie
  build-assoc      train the term-association model

Then:
  serve            run the interactive query REPL
  add-document     append one record to a live generation
  swap             signal the query server to adopt a staged generation
  catalog          export a WordID,Word,Offset,Count CSV of the barrel layout`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dataDir, "data", ".", "index generation directory")

	root.AddCommand(
		newBuildIDMapCmd(),
		newBuildLexiconCmd(),
		newBuildForwardCmd(),
		newBuildInvertCmd(),
		newBuildBarrelsCmd(),
		newBuildPageRankCmd(),
		newBuildTrieCmd(),
		newBuildAssocCmd(),
		newServeCmd(),
		newAddDocumentCmd(),
		newSwapCmd(),
		newCatalogCmd(),
	)

	return root.ExecuteContext(ctx)
}

func paths() config.Paths {
	return config.DefaultPaths(dataDir)
}
