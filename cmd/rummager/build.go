package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crankysmh47/Rummager/internal/assoc"
	"github.com/crankysmh47/Rummager/internal/barrel"
	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/forwardindex"
	"github.com/crankysmh47/Rummager/internal/idmap"
	"github.com/crankysmh47/Rummager/internal/invert"
	"github.com/crankysmh47/Rummager/internal/lexicon"
	"github.com/crankysmh47/Rummager/internal/pagerank"
	"github.com/crankysmh47/Rummager/internal/trie"
)

func newBuildIDMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-idmap",
		Short: "Assign internal doc-ids from the clean dataset's external ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			ids, err := externalIDs(p.CleanDataset)
			if err != nil {
				return err
			}
			m := idmap.Build(ids)
			if err := m.Save(p.IDMapFile); err != nil {
				return err
			}
			slog.Info("id map built", slog.Int("documents", m.Len()))
			return nil
		},
	}
}

func externalIDs(datasetPath string) ([]string, error) {
	f, err := os.Open(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if tabPos := strings.IndexByte(line, '\t'); tabPos >= 0 {
			ids = append(ids, line[:tabPos])
		}
	}
	return ids, scanner.Err()
}

func newBuildLexiconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-lexicon",
		Short: "Assign term ids over the corpus vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			lex, err := lexicon.BuildFromDataset(p.CleanDataset)
			if err != nil {
				return err
			}
			if err := lex.Save(p.LexiconFile); err != nil {
				return err
			}
			slog.Info("lexicon built", slog.Int("terms", int(lex.Size())))
			return nil
		},
	}
}

func newBuildForwardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-forward",
		Short: "Build the forward index and doc-lengths array",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			m, err := idmap.Load(p.IDMapFile)
			if err != nil {
				return err
			}
			lex, err := lexicon.Load(p.LexiconFile)
			if err != nil {
				return err
			}
			return forwardindex.Build(p.CleanDataset, p.ForwardIndex, p.DocLengths, m, lex)
		},
	}
}

func newBuildInvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-invert",
		Short: "Pivot the forward index into per-term posting lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			lex, err := lexicon.Load(p.LexiconFile)
			if err != nil {
				return err
			}
			return invert.Build(p.ForwardIndex, p.InvertedIndex, lex.Size())
		},
	}
}

func newBuildBarrelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-barrels",
		Short: "Shard the inverted index into fixed-width barrels",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			return barrel.Build(p.InvertedIndex, p.BarrelDir, config.WordsPerBarrel)
		},
	}
}

func newBuildPageRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-pagerank",
		Short: "Compute authority scores from the citation graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			g, err := pagerank.LoadGraph(p.GraphFile)
			if err != nil {
				return err
			}
			scores := pagerank.Run(g, config.DefaultPageRankParameters())
			return pagerank.Save(p.PageRankFile, scores)
		},
	}
}

func newBuildTrieCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-trie",
		Short: "Build the autocomplete trie",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			lex, err := lexicon.Load(p.LexiconFile)
			if err != nil {
				return err
			}
			freqs, err := trie.BuildFrequencies(p.ForwardIndex, lex)
			if err != nil {
				return err
			}
			flat := trie.Build(freqs, config.TrieFrequencyFloor)
			if err := trie.Save(p.TrieFile, flat); err != nil {
				return err
			}
			slog.Info("trie built", slog.Int("nodes", len(flat)))
			return nil
		},
	}
}

func newBuildAssocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-assoc",
		Short: "Train the term-association model",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			params := assoc.Params{
				WindowSize:   config.AssocWindowSize,
				MinWordFreq:  config.AssocMinWordFreq,
				MaxVocabSize: config.AssocMaxVocabSize,
				TopK:         config.AssocTopK,
			}
			cooc, err := assoc.Train(p.CleanDataset, params)
			if err != nil {
				return err
			}
			return assoc.Export(p.AssociationsFile, cooc, params.TopK)
		},
	}
}
