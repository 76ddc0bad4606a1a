// Command rummager builds and serves the disk-backed search index
// described across internal/{lexicon,idmap,forwardindex,invert,barrel,
// pagerank,trie,queryengine,assoc}: a set of `build-*` subcommands that
// run the indexing pipeline stage by stage, an `add-document` path for
// incremental single-record updates, a `swap` trigger for the hot-swap
// coordinator, and `serve` for the interactive query REPL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
