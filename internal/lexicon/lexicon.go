// Package lexicon implements the bidirectional term/id map described in
// component 4.B: a dense, insertion-ordered vocabulary shared by every
// builder and the query engine.
package lexicon

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crankysmh47/Rummager/internal/tokenize"
)

// Lexicon is a term ↔ id bijection. Ids are dense and assigned in
// insertion order; the zeroth term encountered gets id 0. There is no
// internal locking: per the concurrency model, a lexicon under
// construction has exactly one writer, and the live-append path
// (Append) is explicitly unsafe against a concurrent reader of the same
// file.
type Lexicon struct {
	termToID map[string]uint32
	idToTerm []string
}

// New returns an empty lexicon.
func New() *Lexicon {
	return &Lexicon{termToID: make(map[string]uint32)}
}

// GetOrAssign returns term's existing id, or assigns the next dense id
// and appends term to the inverse table. Builder-only.
func (l *Lexicon) GetOrAssign(term string) uint32 {
	if id, ok := l.termToID[term]; ok {
		return id
	}
	id := uint32(len(l.idToTerm))
	l.termToID[term] = id
	l.idToTerm = append(l.idToTerm, term)
	return id
}

// Lookup returns term's id without assigning one.
func (l *Lexicon) Lookup(term string) (uint32, bool) {
	id, ok := l.termToID[term]
	return id, ok
}

// Term returns the term for id, or false if id is out of range.
func (l *Lexicon) Term(id uint32) (string, bool) {
	if int(id) >= len(l.idToTerm) {
		return "", false
	}
	return l.idToTerm[id], true
}

// Size returns the number of assigned terms, W.
func (l *Lexicon) Size() uint32 {
	return uint32(len(l.idToTerm))
}

// Terms returns the inverse table in id order. The caller must not
// mutate the returned slice.
func (l *Lexicon) Terms() []string {
	return l.idToTerm
}

// BuildFromDataset scans a `<external-id> TAB <content>` clean-dataset
// file and assigns a dense id to every distinct token the shared
// tokenizer yields, in first-sighted order — the builder path of 4.B,
// grounded on build_lexicon.cpp's single pass over the corpus.
func BuildFromDataset(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer f.Close()

	l := New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		content := line
		if tabPos := strings.IndexByte(line, '\t'); tabPos >= 0 {
			content = line[tabPos+1:]
		}
		for _, token := range tokenize.Tokens(content) {
			l.GetOrAssign(token)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lexicon: scan: %w", err)
	}
	return l, nil
}

// Save writes the binary layout `[W:u32] [len:u32, bytes × len] × W`.
func (l *Lexicon) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lexicon: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(l.idToTerm))); err != nil {
		return fmt.Errorf("lexicon: write header: %w", err)
	}
	for _, term := range l.idToTerm {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(term))); err != nil {
			return fmt.Errorf("lexicon: write term length: %w", err)
		}
		if _, err := w.WriteString(term); err != nil {
			return fmt.Errorf("lexicon: write term: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("lexicon: flush: %w", err)
	}
	return nil
}

// Load reads a lexicon previously written by Save.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var total uint32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("lexicon: read header: %w", err)
	}

	l := &Lexicon{
		termToID: make(map[string]uint32, total),
		idToTerm: make([]string, 0, total),
	}
	for i := uint32(0); i < total; i++ {
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("lexicon: read term %d length: %w", i, err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("lexicon: read term %d: %w", i, err)
		}
		term := string(buf)
		l.termToID[term] = i
		l.idToTerm = append(l.idToTerm, term)
	}
	return l, nil
}

// Append opens the lexicon at path read/write and assigns dense ids to any
// terms not already present, writing each new record to the tail before
// rewriting the header count. Per 4.B, a crash between the tail append and
// the header rewrite orphans the trailing bytes harmlessly: readers stop
// at the (unchanged) header count, and a full rebuild recovers the rest.
func Append(path string, terms []string) (*Lexicon, error) {
	l, err := Load(path)
	if err != nil {
		return nil, err
	}

	var newTerms []string
	for _, term := range terms {
		if _, ok := l.termToID[term]; ok {
			continue
		}
		id := uint32(len(l.idToTerm))
		l.termToID[term] = id
		l.idToTerm = append(l.idToTerm, term)
		newTerms = append(newTerms, term)
	}
	if len(newTerms) == 0 {
		return l, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lexicon: reopen %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("lexicon: seek end: %w", err)
	}
	for _, term := range newTerms {
		if err := binary.Write(f, binary.LittleEndian, uint32(len(term))); err != nil {
			return nil, fmt.Errorf("lexicon: append term length: %w", err)
		}
		if _, err := f.WriteString(term); err != nil {
			return nil, fmt.Errorf("lexicon: append term: %w", err)
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("lexicon: seek start: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(l.idToTerm))); err != nil {
		return nil, fmt.Errorf("lexicon: rewrite header: %w", err)
	}

	return l, nil
}
