// Package tokenize is the single point of text normalization shared by
// every index builder and the query engine. Its output must be
// bit-identical across processes: a mismatch here silently mis-indexes
// rather than failing loudly, so nothing downstream is allowed to keep
// its own copy of this logic.
package tokenize

import "strings"

// Tokens splits text into lower-cased alphanumeric runs and drops
// stopwords. It traverses the input byte by byte rather than rune by rune:
// the corpus this engine indexes is ASCII, and a byte scan matches the
// original tokenizer's behavior exactly, including how it treats
// multi-byte UTF-8 sequences (each continuation byte breaks the current
// run, since it is never in [0-9A-Za-z]).
func Tokens(text string) []string {
	tokens := make([]string, 0, len(text)/6)
	var run strings.Builder

	flush := func() {
		if run.Len() == 0 {
			return
		}
		word := run.String()
		run.Reset()
		if !isStopword(word) {
			tokens = append(tokens, word)
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			run.WriteByte(c)
		case c >= 'a' && c <= 'z':
			run.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			run.WriteByte(c + ('a' - 'A'))
		default:
			flush()
		}
	}
	flush()

	return tokens
}

func isStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// stopwords is a literal transcription of the original tokenizer's list.
// It includes contracted forms like "aren't" verbatim even though the
// tokenizer itself can never produce a run containing an apostrophe (the
// apostrophe always splits the run first, e.g. "aren't" tokenizes as
// "aren" then "t") — those entries are unreachable in the original too.
// Kept byte-for-byte so the reachable subset matches exactly.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "aren't": {},
	"as": {}, "at": {}, "be": {}, "because": {}, "been": {}, "before": {},
	"being": {}, "below": {}, "between": {}, "both": {}, "but": {}, "by": {},
	"can't": {}, "cannot": {}, "could": {}, "couldn't": {}, "did": {}, "didn't": {},
	"do": {}, "does": {}, "doesn't": {}, "doing": {}, "don't": {}, "down": {},
	"during": {}, "each": {}, "few": {}, "for": {}, "from": {}, "further": {},
	"had": {}, "hadn't": {}, "has": {}, "hasn't": {}, "have": {}, "haven't": {},
	"having": {}, "he": {}, "he'd": {}, "he'll": {}, "he's": {}, "her": {},
	"here": {}, "here's": {}, "hers": {}, "herself": {}, "him": {}, "himself": {},
	"his": {}, "how": {}, "how's": {}, "i": {}, "i'd": {}, "i'll": {}, "i'm": {},
	"i've": {}, "if": {}, "in": {}, "into": {}, "is": {}, "isn't": {}, "it": {},
	"it's": {}, "its": {}, "itself": {}, "let's": {}, "me": {}, "more": {},
	"most": {}, "mustn't": {}, "my": {}, "myself": {}, "no": {}, "nor": {},
	"not": {}, "of": {}, "off": {}, "on": {}, "once": {}, "only": {}, "or": {},
	"other": {}, "ought": {}, "our": {}, "ours": {}, "ourselves": {}, "out": {},
	"over": {}, "own": {}, "same": {}, "shan't": {}, "she": {}, "she'd": {},
	"she'll": {}, "she's": {}, "should": {}, "shouldn't": {}, "so": {},
	"some": {}, "such": {}, "than": {}, "that": {}, "that's": {}, "the": {},
	"their": {}, "theirs": {}, "them": {}, "themselves": {}, "then": {},
	"there": {}, "there's": {}, "these": {}, "they": {}, "they'd": {},
	"they'll": {}, "they're": {}, "they've": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "too": {}, "under": {}, "until": {}, "up": {},
	"very": {}, "was": {}, "wasn't": {}, "we": {}, "we'd": {}, "we'll": {},
	"we're": {}, "we've": {}, "were": {}, "weren't": {}, "what": {},
	"what's": {}, "when": {}, "when's": {}, "where": {}, "where's": {},
	"which": {}, "while": {}, "who": {}, "who's": {}, "whom": {}, "why": {},
	"why's": {}, "with": {}, "won't": {}, "would": {}, "wouldn't": {},
	"you": {}, "you'd": {}, "you'll": {}, "you're": {}, "you've": {},
	"your": {}, "yours": {}, "yourself": {}, "yourselves": {},
}
