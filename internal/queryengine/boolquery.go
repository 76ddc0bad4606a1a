package queryengine

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/crankysmh47/Rummager/internal/barrel"
	"github.com/crankysmh47/Rummager/internal/config"
	"github.com/crankysmh47/Rummager/internal/tokenize"
)

// BoolQuery is a fluent boolean query builder over an Engine's barrel-
// backed posting lists, supplementing the spec's conjunctive-only
// evaluator with the OR/NOT verbs the corpus's boolean query builder
// exposes. It trades BM25 ranking for roaring-bitmap set algebra: Term
// bitmaps come from a barrel posting-list fetch rather than a skip-list
// position scan, so there is no phrase/proximity verb — that needs the
// position data this index does not keep.
type BoolQuery struct {
	engine *Engine
	stack  []*roaring.Bitmap
	ops    []boolOp
	negate bool
}

type boolOp int

const (
	opNone boolOp = iota
	opAnd
	opOr
)

// NewBoolQuery starts a new boolean query against engine's current index
// generation.
func NewBoolQuery(engine *Engine) *BoolQuery {
	return &BoolQuery{engine: engine}
}

// Term pushes the bitmap of documents containing term (tokenized the same
// way as a regular query, so "Machine" and "machine" collapse to the
// same posting list; only the first token of term is used). An unknown term pushes an empty bitmap rather than
// aborting the whole query, unlike Engine.Query's AND semantics — boolean
// queries are expected to combine unknown terms with OR and NOT.
func (q *BoolQuery) Term(term string) *BoolQuery {
	tokens := tokenize.Tokens(term)
	bitmap := roaring.NewBitmap()
	if len(tokens) > 0 {
		bitmap = q.termBitmap(tokens[0])
	}
	if q.negate {
		bitmap = q.negateBitmap(bitmap)
		q.negate = false
	}
	q.stack = append(q.stack, bitmap)
	return q
}

func (q *BoolQuery) termBitmap(term string) *roaring.Bitmap {
	bitmap := roaring.NewBitmap()
	id, ok := q.engine.lex.Lookup(term)
	if !ok {
		return bitmap
	}
	list := barrel.Fetch(q.engine.paths.BarrelDir, id, config.WordsPerBarrel)
	for _, p := range list {
		bitmap.Add(p.DocID)
	}
	return bitmap
}

func (q *BoolQuery) negateBitmap(bitmap *roaring.Bitmap) *roaring.Bitmap {
	all := roaring.New()
	all.AddRange(0, uint64(len(q.engine.docLengths)))
	return roaring.AndNot(all, bitmap)
}

// And queues an AND between the next pushed term/group and the result so far.
func (q *BoolQuery) And() *BoolQuery {
	q.ops = append(q.ops, opAnd)
	return q
}

// Or queues an OR between the next pushed term/group and the result so far.
func (q *BoolQuery) Or() *BoolQuery {
	q.ops = append(q.ops, opOr)
	return q
}

// Not negates the next Term or Group.
func (q *BoolQuery) Not() *BoolQuery {
	q.negate = true
	return q
}

// Group evaluates fn as an independent sub-query and pushes its result
// bitmap, so parentheses can express operator precedence.
func (q *BoolQuery) Group(fn func(*BoolQuery)) *BoolQuery {
	sub := NewBoolQuery(q.engine)
	fn(sub)
	result := sub.Execute()
	if q.negate {
		result = q.negateBitmap(result)
		q.negate = false
	}
	q.stack = append(q.stack, result)
	return q
}

// Execute folds the stack left-to-right through the queued operators and
// returns the resulting bitmap of doc-ids.
func (q *BoolQuery) Execute() *roaring.Bitmap {
	if len(q.stack) == 0 {
		return roaring.NewBitmap()
	}
	result := q.stack[0]
	for i := 1; i < len(q.stack); i++ {
		op := opAnd
		if i-1 < len(q.ops) {
			op = q.ops[i-1]
		}
		switch op {
		case opOr:
			result = roaring.Or(result, q.stack[i])
		default:
			result = roaring.And(result, q.stack[i])
		}
	}
	return result
}

// AllOf is a convenience for `Term(t0).And().Term(t1)...`.
func AllOf(engine *Engine, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	q := NewBoolQuery(engine).Term(terms[0])
	for _, t := range terms[1:] {
		q.And().Term(t)
	}
	return q.Execute()
}

// AnyOf is a convenience for `Term(t0).Or().Term(t1)...`.
func AnyOf(engine *Engine, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	q := NewBoolQuery(engine).Term(terms[0])
	for _, t := range terms[1:] {
		q.Or().Term(t)
	}
	return q.Execute()
}

// TermExcluding is a convenience for `Term(include).And().Not().Term(exclude)`.
func TermExcluding(engine *Engine, include, exclude string) *roaring.Bitmap {
	return NewBoolQuery(engine).Term(include).And().Not().Term(exclude).Execute()
}
