// Package barrel implements component 4.E (the barrel writer) and the
// posting-fetch half of component 4.H (the O(1)-seek reader). The on-disk
// format is offset-table-first: a barrel begins with W_b 64-bit absolute
// byte offsets (one per local term-id, 0 meaning "no postings"), followed
// by the non-empty posting lists themselves, each `[len:u32][postings]`.
//
// This is the one canonical layout among the source drafts: it is what
// `spec.md` 4.E/4.H describe, and the only one the original query engine's
// own reader (`fetchPostings`, in `searchengine.cpp`) implements — earlier
// drafts (doc-batched, word-range-sequential, two-file) are superseded.
// See DESIGN.md for the full account.
package barrel

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crankysmh47/Rummager/internal/invert"
	"github.com/crankysmh47/Rummager/internal/postings"
)

const offsetEntrySize = 8 // one u64 per local term-id

// Build partitions the monolithic inverted index at invertedPath into
// fixed-width shards of wordsPerBarrel term-ids each, written to
// outDir/barrel_<b>.bin. Any stale `barrel_<b>.bin` outside the needed
// range is removed first, guarding the stale-shard hazard named in 4.E.
func Build(invertedPath, outDir string, wordsPerBarrel uint32) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("barrel: mkdir %s: %w", outDir, err)
	}

	r, err := invert.OpenReader(invertedPath)
	if err != nil {
		return fmt.Errorf("barrel: %w", err)
	}
	defer r.Close()

	total := r.Total()
	barrelCount := (total + wordsPerBarrel - 1) / wordsPerBarrel
	if err := removeStaleShards(outDir, barrelCount); err != nil {
		return err
	}

	for b := uint32(0); b < barrelCount; b++ {
		width := wordsPerBarrel
		if b == barrelCount-1 && total%wordsPerBarrel != 0 {
			width = total % wordsPerBarrel
		}
		lists := make([][]postings.Posting, width)
		for i := uint32(0); i < width; i++ {
			list, err := r.Next()
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("barrel: inverted index shorter than lexicon")
			}
			if err != nil {
				return fmt.Errorf("barrel: read term list: %w", err)
			}
			lists[i] = list
		}
		path := filepath.Join(outDir, fmt.Sprintf("barrel_%d.bin", b))
		if err := writeBarrel(path, lists, wordsPerBarrel); err != nil {
			return err
		}
		slog.Info("barrel written", slog.Int("barrel", int(b)), slog.Int("terms", int(width)))
	}
	return nil
}

func removeStaleShards(dir string, barrelCount uint32) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("barrel: read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		var idx uint32
		if _, err := fmt.Sscanf(e.Name(), "barrel_%d.bin", &idx); err != nil {
			continue
		}
		if idx >= barrelCount {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("barrel: remove stale shard %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

// writeBarrel writes one shard: the width-entry offset table (entries
// beyond len(lists) up to width are implicitly zero, covering the final
// short barrel), then each non-empty list as `[len:u32][postings]`.
func writeBarrel(path string, lists [][]postings.Posting, width uint32) error {
	offsets := make([]uint64, width)
	var cursor uint64 = uint64(width) * offsetEntrySize
	for i, list := range lists {
		if len(list) == 0 {
			continue
		}
		offsets[i] = cursor
		cursor += 4 + uint64(len(list))*8
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("barrel: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, offsets); err != nil {
		return fmt.Errorf("barrel: write offset table: %w", err)
	}
	for _, list := range lists {
		if len(list) == 0 {
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(list))); err != nil {
			return fmt.Errorf("barrel: write list length: %w", err)
		}
		for _, p := range list {
			if err := binary.Write(w, binary.LittleEndian, p.DocID); err != nil {
				return fmt.Errorf("barrel: write posting: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, p.Freq); err != nil {
				return fmt.Errorf("barrel: write posting: %w", err)
			}
		}
	}
	return w.Flush()
}

// Locate resolves the same offset-table entry as Fetch but stops short of
// reading the posting list, returning its byte offset and length instead.
// Used by diagnostic tooling (catalog export) that wants the shape of the
// index without materializing every posting.
func Locate(dir string, t, wordsPerBarrel uint32) (offset uint64, count uint32, ok bool) {
	b := t / wordsPerBarrel
	local := t % wordsPerBarrel

	path := filepath.Join(dir, fmt.Sprintf("barrel_%d.bin", b))
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	if _, err := f.Seek(int64(local)*offsetEntrySize, io.SeekStart); err != nil {
		return 0, 0, false
	}
	if err := binary.Read(f, binary.LittleEndian, &offset); err != nil {
		return 0, 0, false
	}
	if offset == 0 {
		return 0, 0, false
	}

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return 0, 0, false
	}
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return 0, 0, false
	}
	return offset, count, true
}

// Fetch resolves global term-id t by opening `barrel_<b>.bin` for
// b = t / wordsPerBarrel, seeking to the offset-table entry for
// local = t mod wordsPerBarrel, and (if non-zero) seeking to the posting
// list and reading it. This is the sole I/O path for term lookup — no
// sequential barrel scans. A transient I/O error or an absent barrel file
// yields an empty list rather than an error, per 4.H's failure semantics:
// under AND semantics an empty list for one term already empties the
// whole result.
func Fetch(dir string, t, wordsPerBarrel uint32) []postings.Posting {
	b := t / wordsPerBarrel
	local := t % wordsPerBarrel

	path := filepath.Join(dir, fmt.Sprintf("barrel_%d.bin", b))
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	if _, err := f.Seek(int64(local)*offsetEntrySize, io.SeekStart); err != nil {
		return nil
	}
	var offset uint64
	if err := binary.Read(f, binary.LittleEndian, &offset); err != nil {
		return nil
	}
	if offset == 0 {
		return nil
	}

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil
	}
	var length uint32
	if err := binary.Read(f, binary.LittleEndian, &length); err != nil {
		return nil
	}
	list := make([]postings.Posting, length)
	if err := binary.Read(f, binary.LittleEndian, list); err != nil {
		return nil
	}
	return list
}
