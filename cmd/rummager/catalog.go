package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crankysmh47/Rummager/internal/barrel"
	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/lexicon"
)

func newCatalogCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Export a WordID,Word,Offset,Count catalog from the lexicon and barrels",
		Long: `catalog is a diagnostic dump, not part of any retrieval path: for every
lexicon term that has postings it reports the term id, the term, the byte
offset of its posting list within its barrel shard, and how many postings
it has. Terms without postings are omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(paths(), outputPath)
		},
	}
	cmd.Flags().StringVar(&outputPath, "out", "", "output file (default: stdout)")
	return cmd
}

func runCatalog(p config.Paths, outputPath string) error {
	lex, err := lexicon.Load(p.LexiconFile)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("catalog: create %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"WordID", "Word", "Offset", "Count"}); err != nil {
		return fmt.Errorf("catalog: write header: %w", err)
	}

	for id, term := range lex.Terms() {
		offset, count, ok := barrel.Locate(p.BarrelDir, uint32(id), config.WordsPerBarrel)
		if !ok {
			continue
		}
		row := []string{
			strconv.Itoa(id),
			term,
			strconv.FormatUint(offset, 10),
			strconv.FormatUint(uint64(count), 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("catalog: write row: %w", err)
		}
	}
	return w.Error()
}
