// Package trie implements component 4.G: the autocomplete trie, built as
// a recursive tree (each node keeps a map of its children) and persisted
// as a flattened first-child/next-sibling array (the recursive form is a
// construction-time convenience; the flat array is the on-disk contract,
// per `# 9`).
package trie

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/forwardindex"
	"github.com/crankysmh47/Rummager/internal/lexicon"
)

// node is the pointer-based construction-time trie node.
type node struct {
	key       byte
	frequency uint32
	isEnd     bool
	children  map[byte]*node
}

func newNode(key byte) *node {
	return &node{key: key, children: make(map[byte]*node)}
}

func (n *node) child(key byte) *node {
	return n.children[key]
}

// FlatNode is the persistent record: `(key, frequency, childIndex,
// siblingIndex, isEnd)`. Index 0 is always the root (key=0).
type FlatNode struct {
	Key          byte
	Frequency    int32
	ChildIndex   int32
	SiblingIndex int32
	IsEnd        bool
}

// BuildFrequencies computes a case-folded global frequency per term by
// scanning every forward-index posting, the way trie_builder.cpp's
// calculateFrequencies does: each (term-id, freq) posting in the forward
// index contributes freq to its lower-cased term's running total.
func BuildFrequencies(forwardPath string, lex *lexicon.Lexicon) (map[string]uint32, error) {
	r, err := forwardindex.OpenReader(forwardPath)
	if err != nil {
		return nil, fmt.Errorf("trie: %w", err)
	}
	defer r.Close()

	freqs := make(map[string]uint32)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trie: read forward record: %w", err)
		}
		for _, term := range rec.Terms {
			word, ok := lex.Term(term.TermID)
			if !ok {
				continue
			}
			freqs[strings.ToLower(word)] += term.Freq
		}
	}
	return freqs, nil
}

// Build inserts every (term, freq) pair clearing the noise floor into a
// recursive trie and flattens it via pre-order DFS with children sorted
// ascending by key, chaining each node's children by sibling index.
func Build(freqs map[string]uint32, floor uint32) []FlatNode {
	root := newNode(0)
	for word, freq := range freqs {
		if freq < floor {
			continue
		}
		cur := root
		for i := 0; i < len(word); i++ {
			c := word[i]
			next := cur.child(c)
			if next == nil {
				next = newNode(c)
				cur.children[c] = next
			}
			cur = next
		}
		cur.isEnd = true
		cur.frequency = freq
	}

	var flat []FlatNode
	flatten(root, &flat)
	return flat
}

func flatten(n *node, flat *[]FlatNode) int32 {
	myIndex := int32(len(*flat))
	entry := FlatNode{Key: n.key, ChildIndex: -1, SiblingIndex: -1, IsEnd: n.isEnd}
	if n.isEnd {
		entry.Frequency = int32(n.frequency)
	}
	*flat = append(*flat, entry)

	keys := make([]byte, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var firstChild, prevChild int32 = -1, -1
	for _, k := range keys {
		childIdx := flatten(n.children[k], flat)
		if firstChild == -1 {
			firstChild = childIdx
		}
		if prevChild != -1 {
			(*flat)[prevChild].SiblingIndex = childIdx
		}
		prevChild = childIdx
	}
	(*flat)[myIndex].ChildIndex = firstChild
	return myIndex
}

// Save writes the flat array as fixed-size records (`u8, i32, i32, i32,
// u8`).
func Save(path string, flat []FlatNode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trie: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, n := range flat {
		if err := w.WriteByte(n.Key); err != nil {
			return fmt.Errorf("trie: write key: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, n.Frequency); err != nil {
			return fmt.Errorf("trie: write frequency: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, n.ChildIndex); err != nil {
			return fmt.Errorf("trie: write child index: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, n.SiblingIndex); err != nil {
			return fmt.Errorf("trie: write sibling index: %w", err)
		}
		isEnd := byte(0)
		if n.IsEnd {
			isEnd = 1
		}
		if err := w.WriteByte(isEnd); err != nil {
			return fmt.Errorf("trie: write isEnd: %w", err)
		}
	}
	return w.Flush()
}

// Load reads a flat trie previously written by Save.
func Load(path string) ([]FlatNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trie: open %s: %w", path, err)
	}
	const recordSize = 1 + 4 + 4 + 4 + 1
	if len(data)%recordSize != 0 {
		return nil, fmt.Errorf("trie: %s has truncated record at the end", path)
	}
	count := len(data) / recordSize
	flat := make([]FlatNode, count)
	for i := 0; i < count; i++ {
		off := i * recordSize
		flat[i] = FlatNode{
			Key:          data[off],
			Frequency:    int32(binary.LittleEndian.Uint32(data[off+1:])),
			ChildIndex:   int32(binary.LittleEndian.Uint32(data[off+5:])),
			SiblingIndex: int32(binary.LittleEndian.Uint32(data[off+9:])),
			IsEnd:        data[off+13] != 0,
		}
	}
	return flat, nil
}

// suggestion pairs a term with its global frequency for ranking.
type suggestion struct {
	term string
	freq int32
}

// Suggest walks sibling links to match each byte of prefix, descending on
// success and failing fast on mismatch; once the prefix is matched it
// collects the terminal node (if any) and every reachable descendant,
// sorts by frequency descending, and returns up to config.TrieSuggestionCount
// term strings.
func Suggest(flat []FlatNode, prefix string) []string {
	if len(flat) == 0 {
		return nil
	}

	node := int32(0)
	for i := 0; i < len(prefix); i++ {
		child := flat[node].ChildIndex
		target := prefix[i]
		found := false
		for child != -1 {
			if flat[child].Key == target {
				node = child
				found = true
				break
			}
			child = flat[child].SiblingIndex
		}
		if !found {
			return nil
		}
	}

	var results []suggestion
	collect(flat, node, prefix, &results)
	sort.Slice(results, func(i, j int) bool { return results[i].freq > results[j].freq })

	limit := config.TrieSuggestionCount
	if len(results) < limit {
		limit = len(results)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = results[i].term
	}
	return out
}

func collect(flat []FlatNode, idx int32, prefix string, results *[]suggestion) {
	n := flat[idx]
	if n.IsEnd && n.Frequency > 0 {
		*results = append(*results, suggestion{term: prefix, freq: n.Frequency})
	}
	for child := n.ChildIndex; child != -1; child = flat[child].SiblingIndex {
		collect(flat, child, prefix+string(flat[child].Key), results)
	}
}
