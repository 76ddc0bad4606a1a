// Package forwardindex builds and streams component 4.C: per-document
// term-frequency records keyed by doc-id, plus the parallel doc-lengths
// array the query engine uses for BM25 length normalization.
package forwardindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/crankysmh47/Rummager/internal/idmap"
	"github.com/crankysmh47/Rummager/internal/lexicon"
	"github.com/crankysmh47/Rummager/internal/tokenize"
)

// Term is one (term-id, freq) pair within a document, ordered by term-id
// ascending on emit.
type Term struct {
	TermID uint32
	Freq   uint32
}

// Record is one forward-index entry: a document and its kept term
// frequencies.
type Record struct {
	DocID uint32
	Total uint32
	Terms []Term
}

// Build streams cleanDatasetPath (`<external-id> TAB <content>` lines),
// resolving each record's doc-id via idMap (skipping unmapped records per
// 4.C step 2) and each token's term-id via lex (skipping tokens absent
// from the closed post-lexicon vocabulary), and writes forwardPath and
// lengthsPath in the layouts named in `# 6`.
func Build(cleanDatasetPath, forwardPath, lengthsPath string, idMap *idmap.IDMap, lex *lexicon.Lexicon) error {
	in, err := os.Open(cleanDatasetPath)
	if err != nil {
		return fmt.Errorf("forwardindex: open %s: %w", cleanDatasetPath, err)
	}
	defer in.Close()

	fwd, err := os.Create(forwardPath)
	if err != nil {
		return fmt.Errorf("forwardindex: create %s: %w", forwardPath, err)
	}
	defer fwd.Close()
	fwdWriter := bufio.NewWriter(fwd)

	docCount := uint32(idMap.Len())
	lengths := make([]uint32, docCount)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var processed int
	for scanner.Scan() {
		line := scanner.Text()
		tabPos := strings.IndexByte(line, '\t')
		if tabPos < 0 {
			continue // CorruptRecord: malformed line, skip
		}
		externalID := line[:tabPos]
		content := line[tabPos+1:]

		docID, ok := idMap.Internal(externalID)
		if !ok {
			continue // no mapping: skip per 4.C step 2
		}

		record := buildRecord(docID, content, lex)
		if err := writeRecord(fwdWriter, record); err != nil {
			return fmt.Errorf("forwardindex: write record: %w", err)
		}
		lengths[docID] = record.Total

		processed++
		if processed%10000 == 0 {
			slog.Info("forward index progress", slog.Int("documents", processed))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("forwardindex: scan: %w", err)
	}
	if err := fwdWriter.Flush(); err != nil {
		return fmt.Errorf("forwardindex: flush: %w", err)
	}

	if err := writeLengths(lengthsPath, lengths); err != nil {
		return err
	}
	slog.Info("forward index build complete", slog.Int("documents", processed))
	return nil
}

func buildRecord(docID uint32, content string, lex *lexicon.Lexicon) Record {
	freqs := make(map[uint32]uint32)
	var total uint32
	for _, token := range tokenize.Tokens(content) {
		termID, ok := lex.Lookup(token)
		if !ok {
			continue // closed vocabulary: drop tokens not in the lexicon
		}
		freqs[termID]++
		total++
	}

	ids := make([]uint32, 0, len(freqs))
	for id := range freqs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	terms := make([]Term, len(ids))
	for i, id := range ids {
		terms[i] = Term{TermID: id, Freq: freqs[id]}
	}

	return Record{DocID: docID, Total: total, Terms: terms}
}

func writeRecord(w io.Writer, r Record) error {
	if err := binary.Write(w, binary.LittleEndian, r.DocID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.Total); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.Terms))); err != nil {
		return err
	}
	for _, t := range r.Terms {
		if err := binary.Write(w, binary.LittleEndian, t.TermID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, t.Freq); err != nil {
			return err
		}
	}
	return nil
}

func writeLengths(path string, lengths []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("forwardindex: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(lengths))); err != nil {
		return fmt.Errorf("forwardindex: write length header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, lengths); err != nil {
		return fmt.Errorf("forwardindex: write lengths: %w", err)
	}
	return w.Flush()
}

// AppendDocument implements the live add-document path from
// add_document.cpp: it tokenizes content and resolves each token with
// lex.Lookup, dropping tokens lex does not hold (no ids are assigned here;
// the caller runs lexicon.Append for the same tokens first), assigns the
// next sequential doc-id from the current lengths header, appends one
// record to forwardPath, and rewrites lengthsPath in full with the new
// length appended. It is not safe to call concurrently with a reader of
// the same files, matching the single-writer concurrency model.
func AppendDocument(forwardPath, lengthsPath, content string, lex *lexicon.Lexicon) (docID uint32, docLen uint32, err error) {
	lengths, err := LoadLengths(lengthsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("forwardindex: load lengths for append: %w", err)
	}
	docID = uint32(len(lengths))

	record := buildRecord(docID, content, lex)

	fwd, err := os.OpenFile(forwardPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, 0, fmt.Errorf("forwardindex: open %s for append: %w", forwardPath, err)
	}
	defer fwd.Close()
	if err := writeRecord(fwd, record); err != nil {
		return 0, 0, fmt.Errorf("forwardindex: append record: %w", err)
	}

	if err := writeLengths(lengthsPath, append(lengths, record.Total)); err != nil {
		return 0, 0, err
	}
	return docID, record.Total, nil
}

// Reader streams forward-index records lazily; it is a finite, one-shot
// sequence, not restartable without a fresh Open (per `# 9` design notes).
type Reader struct {
	r *bufio.Reader
	f *os.File
}

// OpenReader opens path for streaming.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("forwardindex: open %s: %w", path, err)
	}
	return &Reader{r: bufio.NewReader(f), f: f}, nil
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (rd *Reader) Next() (Record, error) {
	var rec Record
	if err := binary.Read(rd.r, binary.LittleEndian, &rec.DocID); err != nil {
		return Record{}, err // io.EOF on clean end, otherwise wrapped below
	}
	if err := binary.Read(rd.r, binary.LittleEndian, &rec.Total); err != nil {
		return Record{}, fmt.Errorf("forwardindex: read total: %w", err)
	}
	var unique uint32
	if err := binary.Read(rd.r, binary.LittleEndian, &unique); err != nil {
		return Record{}, fmt.Errorf("forwardindex: read unique count: %w", err)
	}
	rec.Terms = make([]Term, unique)
	for i := uint32(0); i < unique; i++ {
		if err := binary.Read(rd.r, binary.LittleEndian, &rec.Terms[i].TermID); err != nil {
			return Record{}, fmt.Errorf("forwardindex: read term id: %w", err)
		}
		if err := binary.Read(rd.r, binary.LittleEndian, &rec.Terms[i].Freq); err != nil {
			return Record{}, fmt.Errorf("forwardindex: read term freq: %w", err)
		}
	}
	return rec, nil
}

// Close releases the underlying file.
func (rd *Reader) Close() error {
	return rd.f.Close()
}

// LoadLengths reads `doc_lengths.bin`: a 32-bit document count followed by
// that many 32-bit lengths indexed by doc-id.
func LoadLengths(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("forwardindex: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var total uint32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("forwardindex: read lengths header: %w", err)
	}
	lengths := make([]uint32, total)
	if err := binary.Read(r, binary.LittleEndian, lengths); err != nil {
		return nil, fmt.Errorf("forwardindex: read lengths: %w", err)
	}
	return lengths, nil
}
