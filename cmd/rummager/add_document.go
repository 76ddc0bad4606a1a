package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crankysmh47/Rummager/internal/barrel"
	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/forwardindex"
	"github.com/crankysmh47/Rummager/internal/invert"
	"github.com/crankysmh47/Rummager/internal/lexicon"
	"github.com/crankysmh47/Rummager/internal/metadata"
	"github.com/crankysmh47/Rummager/internal/tokenize"
)

func newAddDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-document <path-to-txt-file>",
		Short: "Append one document and stage a fresh index generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddDocument(paths(), args[0])
		},
	}
}

// runAddDocument mirrors add_document.cpp's single-document pipeline:
// append any new terms to the lexicon, append the document's forward
// index record and doc length, append a metadata line, then re-invert
// and re-barrel into a staging directory and drop a signal file so the
// hot-swap coordinator picks it up on its next poll.
func runAddDocument(p config.Paths, inputPath string) error {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("add-document: read %s: %w", inputPath, err)
	}
	if len(content) == 0 {
		return fmt.Errorf("add-document: %s is empty", inputPath)
	}

	tokens := tokenize.Tokens(string(content))
	lex, err := lexicon.Append(p.LexiconFile, tokens)
	if err != nil {
		return fmt.Errorf("add-document: %w", err)
	}

	docID, docLen, err := forwardindex.AppendDocument(p.ForwardIndex, p.DocLengths, string(content), lex)
	if err != nil {
		return fmt.Errorf("add-document: %w", err)
	}
	slog.Info("document appended", slog.Int("doc_id", int(docID)), slog.Int("length", int(docLen)))

	filename := filepath.Base(inputPath)
	record := metadata.Record{
		ExternalID: fmt.Sprintf("%d", docID),
		Title:      "New Doc: " + filename,
		Authors:    "System Updater",
		Category:   "New",
		Date:       "2025-01-01",
	}
	if err := metadata.Append(p.MetadataFile, record); err != nil {
		return fmt.Errorf("add-document: %w", err)
	}

	if err := invert.Build(p.ForwardIndex, p.InvertedIndex, lex.Size()); err != nil {
		return fmt.Errorf("add-document: re-invert: %w", err)
	}

	stagingDir := p.BarrelDir + "_staging"
	if err := barrel.Build(p.InvertedIndex, stagingDir, config.WordsPerBarrel); err != nil {
		return fmt.Errorf("add-document: build staging barrels: %w", err)
	}

	if err := writeSignalFile(p.SignalFile, stagingDir); err != nil {
		return err
	}
	fmt.Printf("Document added as doc-id %d; staged barrels at %s, signal written.\n", docID, stagingDir)
	return nil
}

func writeSignalFile(signalPath, barrelDir string) error {
	return os.WriteFile(signalPath, []byte(strings.TrimRight(barrelDir, "/\\")+"\n"), 0o644)
}
