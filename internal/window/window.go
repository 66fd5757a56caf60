// Package window implements the PersistenceWindow component (spec.md §4.2):
// a sliding buffer of WindowEntry records that tallies, for every token
// introduced by a revision, how many subsequent revisions continue to
// contain it before the entry ages out of the window or the page ends.
package window

import (
	"time"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/token"
)

// DefaultSize and DefaultRevertRadius mirror spec.md §4.2's defaults;
// RevertRadius lives here only as a documented sibling default — the actual
// radius is a construction parameter of internal/revert.Detector.
const (
	DefaultSize        = 50
	DefaultRevertRadius = 15
)

// entry is the live, in-buffer counterpart of record.PersistenceBlock: a
// WindowEntry accumulating per-token and entry-level counters while its
// revision is still inside the window (spec.md §3 WindowEntry).
type entry struct {
	meta   record.RevisionMeta
	source record.RevisionRecord
	current []*token.Token

	revisionsProcessed int
	nonSelfProcessed   int
	secondsPossible    float64

	tokens []*tokenCounter
}

type tokenCounter struct {
	tok              *token.Token
	persisted        int
	nonSelfPersisted int
	secondsVisible   float64
	// stillVisible tracks whether the token has survived uninterrupted
	// since it was added — once it disappears, later reappearance (a new
	// Token instance, per spec.md §9 open question (b)) never resumes
	// accrual on this counter.
	stillVisible bool
}

func newEntry(source record.RevisionRecord, current, added []*token.Token) *entry {
	e := &entry{
		meta:    source.Meta(),
		source:  source,
		current: current,
		tokens:  make([]*tokenCounter, 0, len(added)),
	}
	for _, t := range added {
		e.tokens = append(e.tokens, &tokenCounter{tok: t, stillVisible: true})
	}
	return e
}

// observe applies one subsequent revision's presence/absence to this
// entry's tokens and entry-level counters (spec.md §4.2 algorithm step 2).
func (e *entry) observe(r record.RevisionMeta, currentTokens []*token.Token) {
	self := r.UserKey == e.meta.UserKey

	e.revisionsProcessed++
	if !self {
		e.nonSelfProcessed++
	}
	e.secondsPossible = r.Timestamp.Sub(e.meta.Timestamp).Seconds()

	present := token.NewSet()
	for _, t := range currentTokens {
		present.Add(t)
	}

	for _, tc := range e.tokens {
		if !present.Contains(tc.tok) {
			tc.stillVisible = false
			continue
		}
		if !tc.stillVisible {
			// Reappeared after a gap: per spec.md §4.2, visibility does not
			// resume (and, per §9, a genuine reappearance would in practice
			// be a distinct Token instance, never this one).
			continue
		}
		tc.persisted++
		tc.secondsVisible = r.Timestamp.Sub(e.meta.Timestamp).Seconds()
		if !self {
			tc.nonSelfPersisted++
		}
	}
}

// toBlock renders this entry's accumulated counters into the wire shape,
// marking censored according to the caller's end-of-window-size or
// end-of-page context (spec.md §4.2 "emit... marked censored=false" /
// "End-of-page flush... mark censored=true").
func (e *entry) toBlock(censored bool) record.PersistenceBlock {
	stats := make([]record.TokenStat, len(e.tokens))
	for i, tc := range e.tokens {
		stats[i] = record.TokenStat{
			Text:             tc.tok.Text,
			Type:             tc.tok.Type,
			Persisted:        tc.persisted,
			NonSelfPersisted: tc.nonSelfPersisted,
			SecondsVisible:   tc.secondsVisible,
		}
	}
	return record.PersistenceBlock{
		RevisionsProcessed: e.revisionsProcessed,
		NonSelfProcessed:   e.nonSelfProcessed,
		SecondsPossible:    e.secondsPossible,
		Tokens:             stats,
		Censored:           censored,
		NonSelfCensored:    censored,
	}
}

// PersistenceWindow is the sliding buffer described in spec.md §4.2. One
// Window is used per page; it is not safe for concurrent use.
type Window struct {
	size   int
	sunset time.Time

	buf []*entry
}

// New constructs a Window. size must be positive; sunset sets
// seconds_possible for the entries still in the buffer when the page ends
// (spec.md §4.2 "sunset_timestamp"). seconds_visible is not extended to
// sunset: it stops at the last observed revision that still holds the token.
func New(size int, sunset time.Time) *Window {
	if size <= 0 {
		size = DefaultSize
	}
	return &Window{size: size, sunset: sunset}
}

// Push appends a new revision's (source, current, added) triple and returns
// any PersistenceRecord emitted because the buffer has exceeded its
// configured size (spec.md §4.2 algorithm steps 1–3). The return is nil
// unless the window just evicted its oldest entry; Push advances the
// buffer by exactly one entry at a time, so at most one record is ever
// emitted per call.
func (w *Window) Push(source record.RevisionRecord, current, added []*token.Token) *record.PersistenceRecord {
	meta := source.Meta()
	for _, e := range w.buf {
		e.observe(meta, current)
	}
	w.buf = append(w.buf, newEntry(source, current, added))

	if len(w.buf) <= w.size {
		return nil
	}

	oldest := w.buf[0]
	w.buf = w.buf[1:]
	return oldest.emit(false)
}

// Flush closes out every entry still in the buffer at end-of-page,
// censoring each because the observation window was truncated by
// end-of-history (spec.md §4.2 "End-of-page flush").
func (w *Window) Flush() []*record.PersistenceRecord {
	out := make([]*record.PersistenceRecord, 0, len(w.buf))
	for _, e := range w.buf {
		e.secondsPossible = w.sunset.Sub(e.meta.Timestamp).Seconds()
		out = append(out, e.emit(true))
	}
	w.buf = nil
	return out
}

// emit renders an entry's accumulated counters as a full PersistenceRecord,
// carrying the original revision record along (text/diff already dropped
// by the caller that fed Push, per record.RevisionRecord.DropText/DropDiff).
func (e *entry) emit(censored bool) *record.PersistenceRecord {
	return &record.PersistenceRecord{
		RevisionRecord: e.source,
		Persistence:    e.toBlock(censored),
	}
}
