// Package invert implements component 4.D: the pivot from the
// document-centric forward index to term-ordered posting lists.
package invert

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/forwardindex"
	"github.com/crankysmh47/Rummager/internal/postings"
)

// ErrOutOfMemory is returned by Build when the in-memory pivot's total
// posting count crosses config.MaxInMemoryPostings; per 4.D, callers
// hitting this must substitute an external-sort BSBI variant with the
// same output contract. This implementation does not provide that
// fallback — it is reserved for a corpus large enough to exceed RAM,
// which the reference deployment does not reach.
var ErrOutOfMemory = errors.New("invert: posting lists exceed available memory")

// Build streams forwardPath and pivots it into W per-term posting lists
// in memory, each accumulated in a postings.SkipList keyed by doc-id, so
// every posting list comes out sorted ascending whatever order the forward
// records arrive in — the invariant the barrel writer and query engine
// depend on.
func Build(forwardPath, invertedPath string, vocabularySize uint32) error {
	lists := make([]*postings.SkipList, vocabularySize)

	r, err := forwardindex.OpenReader(forwardPath)
	if err != nil {
		return fmt.Errorf("invert: %w", err)
	}
	defer r.Close()

	var docsProcessed int
	var totalPostings uint64
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("invert: read forward record: %w", err)
		}

		for _, term := range rec.Terms {
			if term.TermID >= vocabularySize {
				continue // CorruptRecord: out-of-range term id, skip
			}
			if lists[term.TermID] == nil {
				lists[term.TermID] = postings.New()
			}
			lists[term.TermID].Insert(rec.DocID, term.Freq)
			totalPostings++
			if totalPostings > config.MaxInMemoryPostings {
				return fmt.Errorf("invert: after %d documents: %w", docsProcessed, ErrOutOfMemory)
			}
		}

		docsProcessed++
		if docsProcessed%10000 == 0 {
			slog.Info("invert progress", slog.Int("documents", docsProcessed))
		}
	}

	if err := write(invertedPath, lists); err != nil {
		return err
	}
	slog.Info("invert complete", slog.Int("documents", docsProcessed), slog.Int("terms", int(vocabularySize)))
	return nil
}

func write(path string, lists []*postings.SkipList) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("invert: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(lists))); err != nil {
		return fmt.Errorf("invert: write header: %w", err)
	}
	for _, sl := range lists {
		var ps []postings.Posting
		if sl != nil {
			ps = sl.Postings()
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(ps))); err != nil {
			return fmt.Errorf("invert: write list length: %w", err)
		}
		for _, p := range ps {
			if err := binary.Write(w, binary.LittleEndian, p.DocID); err != nil {
				return fmt.Errorf("invert: write posting: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, p.Freq); err != nil {
				return fmt.Errorf("invert: write posting: %w", err)
			}
		}
	}
	return w.Flush()
}

// Reader streams the monolithic `inverted_index.bin` file term by term, in
// the order the barrel writer consumes it.
type Reader struct {
	r     *bufio.Reader
	f     *os.File
	total uint32
	read  uint32
}

// OpenReader opens invertedPath and reads its header.
func OpenReader(invertedPath string) (*Reader, error) {
	f, err := os.Open(invertedPath)
	if err != nil {
		return nil, fmt.Errorf("invert: open %s: %w", invertedPath, err)
	}
	r := bufio.NewReader(f)
	var total uint32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		f.Close()
		return nil, fmt.Errorf("invert: read header: %w", err)
	}
	return &Reader{r: r, f: f, total: total}, nil
}

// Total returns W, the vocabulary size this index was built against.
func (rd *Reader) Total() uint32 {
	return rd.total
}

// Next returns the next term's posting list, in ascending term-id order.
// Returns io.EOF once all W lists have been read.
func (rd *Reader) Next() ([]postings.Posting, error) {
	if rd.read >= rd.total {
		return nil, io.EOF
	}
	var length uint32
	if err := binary.Read(rd.r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("invert: read list length: %w", err)
	}
	list := make([]postings.Posting, length)
	for i := uint32(0); i < length; i++ {
		if err := binary.Read(rd.r, binary.LittleEndian, &list[i].DocID); err != nil {
			return nil, fmt.Errorf("invert: read posting: %w", err)
		}
		if err := binary.Read(rd.r, binary.LittleEndian, &list[i].Freq); err != nil {
			return nil, fmt.Errorf("invert: read posting: %w", err)
		}
	}
	rd.read++
	return list, nil
}

// Close releases the underlying file.
func (rd *Reader) Close() error {
	return rd.f.Close()
}
