// Package token defines the identity-bearing unit of content that the
// persistence pipeline tracks across a page's revision history.
package token

// Token is a single unit of content produced by the tokenizer. Two Tokens
// with identical Text are never equal for persistence purposes: survival is
// tracked by instance identity (by *Token pointer), not by value.
//
// A Token is created in exactly one place, the diff stage, when content
// first appears in a revision that has no matching token in the previous
// revision's token list. Every later revision that preserves the token
// carries the same pointer forward.
type Token struct {
	Text string
	Type string

	// Revisions is the ordered, deduplicated list of revision IDs in which
	// this token was observed. It is monotonically non-decreasing by
	// insertion order; a given revision ID appears at most once.
	Revisions []int64

	seen map[int64]struct{}
}

// New creates a Token that has not yet been observed in any revision.
func New(text string) *Token {
	return &Token{Text: text}
}

// NewTyped creates a Token carrying an optional tokenizer-assigned type tag.
func NewTyped(text, typ string) *Token {
	return &Token{Text: text, Type: typ}
}

// Persist records that this token instance was observed in revisionID. It is
// idempotent per revision: calling it twice with the same ID for the same
// token instance appends the ID only once, matching the dedup-by-instance
// rule §4.1 requires of DiffState.
func (t *Token) Persist(revisionID int64) {
	if t.seen == nil {
		t.seen = make(map[int64]struct{}, 1)
	}
	if _, ok := t.seen[revisionID]; ok {
		return
	}
	t.seen[revisionID] = struct{}{}
	t.Revisions = append(t.Revisions, revisionID)
}

// Set is an identity-keyed set of Tokens, used to dedupe persistence
// bookkeeping when a diff algorithm emits the same source token across more
// than one equal span in a single revision (§4.1 step 4).
type Set map[*Token]struct{}

// NewSet returns an empty identity-keyed token set.
func NewSet() Set { return make(Set) }

// Add inserts t into the set, returning true if it was not already present.
func (s Set) Add(t *Token) bool {
	if _, ok := s[t]; ok {
		return false
	}
	s[t] = struct{}{}
	return true
}

// Contains reports whether t (by pointer identity) is a member of s.
func (s Set) Contains(t *Token) bool {
	_, ok := s[t]
	return ok
}

// Texts joins the Text field of every token in order, the detokenization
// used by the round-trip property in spec §8.
func Texts(tokens []*Token) string {
	total := 0
	for _, t := range tokens {
		total += len(t.Text)
	}
	buf := make([]byte, 0, total)
	for _, t := range tokens {
		buf = append(buf, t.Text...)
	}
	return string(buf)
}

// ContainsIdentity reports whether needle is present in haystack by pointer
// identity (not by text equality).
func ContainsIdentity(haystack []*Token, needle *Token) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

// TextsSlice returns each token's Text in order, for building the wire
// representation of an operation's carried content.
func TextsSlice(tokens []*Token) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
