package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crankysmh47/Rummager/internal/assoc"
	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/queryengine"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive query REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(paths())
		},
	}
}

// runServe mirrors searchengine.cpp's REPL: read a line, recognize
// `exit`, `/date`, `/cat:<category>`, `/suggest <prefix>`, `/related
// <term>`, `/bool <expr>`, otherwise treat the whitespace-separated words
// as a conjunctive query. The hot-swap coordinator is polled once per
// iteration, before the next query is evaluated, per 4.I.
func runServe(p config.Paths) error {
	coordinator, err := queryengine.NewCoordinator(p, config.DefaultRankingParameters())
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	related, err := assoc.Load(p.AssociationsFile)
	if err != nil {
		related = nil // non-fatal: /related disabled
	}

	fmt.Println("=== Rummager Search Engine ===")
	fmt.Println("Options: /date, /cat:<category>, /suggest <prefix>, /related <term>, /bool <expr>, exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if _, err := coordinator.PollOnce(); err != nil {
			fmt.Fprintln(os.Stderr, "hot-swap poll failed:", err)
		}

		fmt.Print("\nQuery> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "/suggest "):
			prefix := strings.TrimSpace(strings.TrimPrefix(line, "/suggest "))
			printSuggestions(coordinator.Current().Suggest(prefix))
		case strings.HasPrefix(line, "/related "):
			term := strings.TrimSpace(strings.TrimPrefix(line, "/related "))
			printAssociations(assoc.Related(related, term))
		case strings.HasPrefix(line, "/bool "):
			expr := strings.TrimSpace(strings.TrimPrefix(line, "/bool "))
			runBoolQuery(coordinator.Current(), expr)
		default:
			runSearch(coordinator.Current(), line)
		}
	}
	return scanner.Err()
}

func runSearch(engine *queryengine.Engine, line string) {
	opts := queryengine.Options{}
	var words []string
	for _, word := range strings.Fields(line) {
		switch {
		case word == "/date":
			opts.SortByDate = true
		case strings.HasPrefix(word, "/cat:"):
			opts.CategoryFilter = strings.TrimPrefix(word, "/cat:")
		default:
			words = append(words, word)
		}
	}
	query := strings.Join(words, " ")
	if query == "" {
		return
	}

	start := time.Now()
	results := engine.Query(query, opts)
	elapsed := time.Since(start)

	fmt.Printf("Found %d results in %s.\n", len(results), elapsed)
	for _, r := range results {
		rec, ok := engine.Metadata(r.DocID)
		if !ok {
			continue
		}
		fmt.Println(strings.Repeat("-", 50))
		fmt.Printf(" [%.4f] %s\n", r.Score, rec.Title)
		fmt.Printf("       Authors: %s\n", rec.Authors)
		fmt.Printf("       Category: %s | Date: %s\n", rec.Category, rec.Date)
		fmt.Printf("       Link: https://arxiv.org/abs/%s\n", rec.ExternalID)
	}
}

func runBoolQuery(engine *queryengine.Engine, expr string) {
	terms := strings.Fields(expr)
	if len(terms) == 0 {
		return
	}
	bitmap := queryengine.AllOf(engine, terms...)
	fmt.Printf("Found %d results.\n", bitmap.GetCardinality())
	it := bitmap.Iterator()
	for it.HasNext() {
		docID := it.Next()
		if rec, ok := engine.Metadata(docID); ok {
			fmt.Printf(" - %s\n", rec.Title)
		}
	}
}

func printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		fmt.Println("(no suggestions)")
		return
	}
	for _, s := range suggestions {
		fmt.Println(" -", s)
	}
}

func printAssociations(associations []assoc.Association) {
	if len(associations) == 0 {
		fmt.Println("(no associations)")
		return
	}
	for _, a := range associations {
		fmt.Printf(" - %s (%d)\n", a.Stem, a.Count)
	}
}
