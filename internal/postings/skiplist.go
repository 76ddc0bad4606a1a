// Package postings implements the in-memory accumulation structure used
// by the inverter (component 4.D) to build one posting list per term.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS A SKIP LIST?
// ═══════════════════════════════════════════════════════════════════════════════
// A skip list is a probabilistic data structure offering O(log n) search
// and insert, similar to a balanced tree but without rotations:
//
// Level 2: HEAD -------------------------------------> [30] -----------> NIL
// Level 1: HEAD ----------------> [15] -------------> [30] -----------> NIL
// Level 0: HEAD --> [5] -> [10] -> [15] -> [20] -> [25] -> [30] -> [35] -> NIL
//
// Each posting list in this engine is keyed by doc-id alone — there is no
// within-document position to track, since phrase/positional queries are
// out of scope. Insert increments the stored frequency when a doc-id
// recurs instead of threading a second key dimension through the tower.
// ═══════════════════════════════════════════════════════════════════════════════
package postings

import (
	"math/rand"
)

// MaxHeight bounds the tower height.
const MaxHeight = 32

// Posting is one (doc-id, freq) pair, the element type the query engine
// and barrel writer consume.
type Posting struct {
	DocID uint32
	Freq  uint32
}

type node struct {
	key     uint32
	freq    uint32
	forward [MaxHeight]*node
}

// SkipList holds postings for a single term, ordered ascending by doc-id.
type SkipList struct {
	head   *node
	height int
	size   int
}

// New returns an empty skip list.
func New() *SkipList {
	return &SkipList{
		head:   &node{},
		height: 1,
	}
}

// Insert records an occurrence of docID: if docID is already present its
// frequency is incremented by delta, otherwise a new node is inserted in
// sorted position. When the forward index records are in ascending doc-id
// order every Insert lands at the tail; the tower search places an
// out-of-order doc-id in its sorted position all the same.
func (sl *SkipList) Insert(docID uint32, delta uint32) {
	var journey [MaxHeight]*node
	cur := sl.head
	for level := sl.height - 1; level >= 0; level-- {
		for cur.forward[level] != nil && cur.forward[level].key < docID {
			cur = cur.forward[level]
		}
		journey[level] = cur
	}

	if next := cur.forward[0]; next != nil && next.key == docID {
		next.freq += delta
		return
	}

	newHeight := randomHeight()
	if newHeight > sl.height {
		for level := sl.height; level < newHeight; level++ {
			journey[level] = sl.head
		}
		sl.height = newHeight
	}

	n := &node{key: docID, freq: delta}
	for level := 0; level < newHeight; level++ {
		n.forward[level] = journey[level].forward[level]
		journey[level].forward[level] = n
	}
	sl.size++
}

// Len returns the number of distinct doc-ids recorded.
func (sl *SkipList) Len() int {
	return sl.size
}

// Postings flattens the skip list into the ascending-doc-id slice the
// barrel writer and inverted-index file format require.
func (sl *SkipList) Postings() []Posting {
	out := make([]Posting, 0, sl.size)
	for n := sl.head.forward[0]; n != nil; n = n.forward[0] {
		out = append(out, Posting{DocID: n.key, Freq: n.freq})
	}
	return out
}

func randomHeight() int {
	height := 1
	for height < MaxHeight && rand.Float64() < 0.5 {
		height++
	}
	return height
}
