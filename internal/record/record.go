// Package record defines the JSON wire shapes exchanged between pipeline
// stages (spec.md §6): the input revision record, the persistence-stage
// output, and the stats-stage output, plus the small set of helpers the
// original Python tooling's util module provided for trimming and
// normalizing those documents.
package record

import (
	"fmt"
	"time"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/token"
)

// PageMeta is the page back-reference carried on every revision (spec.md §3).
type PageMeta struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Namespace int    `json:"namespace"`
}

// UserMeta identifies a revision's author, either by registered user id or,
// for anonymous edits, by IP text (spec.md §3 "user (optional; has id
// and/or text for IP)").
type UserMeta struct {
	ID   *int64 `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

// ContributorMeta is the contributor shape a raw MediaWiki-dump-derived
// revision document carries before normalization: {id, user_text} rather
// than mwpersist's own {id, text} UserMeta shape (SPEC_FULL.md §C, ported
// from original_source/util.go's normalize_doc).
type ContributorMeta struct {
	ID       *int64 `json:"id"`
	UserText string `json:"user_text"`
}

// Key returns a stable comparison key for "same author" checks (spec.md
// §4.2 "if R.user ≠ E.user"). A nil UserMeta and an UserMeta with neither
// field set both collapse to the same empty key, so two unattributed edits
// compare as the same author ("self").
func (u *UserMeta) Key() string {
	if u == nil {
		return ""
	}
	if u.ID != nil {
		return fmt.Sprintf("id:%d", *u.ID)
	}
	if u.Text != "" {
		return "ip:" + u.Text
	}
	return ""
}

// RevisionMeta is the subset of a Revision the core's persistence
// accounting needs: identity, time, and authorship (spec.md §3, §4.2).
type RevisionMeta struct {
	ID        int64
	Timestamp time.Time
	UserKey   string
}

// DiffDoc carries a precomputed operation list in lieu of raw text (spec.md
// §6 "When text is absent, diff.ops must be present"), plus the TimedOut
// marker a driver sets after substituting a trivial edit script for a diff
// that exceeded its timeout (spec.md §7 DiffTimeout).
type DiffDoc struct {
	Ops      []*token.OpDoc `json:"ops"`
	TimedOut bool           `json:"timedout,omitempty"`
}

// RevisionRecord is the input record (spec.md §6): one JSON line per
// revision within a page-partitioned stream.
type RevisionRecord struct {
	ID           int64            `json:"id"`
	Timestamp    time.Time        `json:"timestamp"`
	SHA1         string           `json:"sha1"`
	Text         *string          `json:"text,omitempty"`
	User         *UserMeta        `json:"user,omitempty"`
	Contributor  *ContributorMeta `json:"contributor,omitempty"`
	Page         PageMeta         `json:"page"`
	Diff         *DiffDoc         `json:"diff,omitempty"`
}

// Meta extracts the RevisionMeta the core operates on from a wire record.
func (r *RevisionRecord) Meta() RevisionMeta {
	return RevisionMeta{ID: r.ID, Timestamp: r.Timestamp, UserKey: r.User.Key()}
}

// TokenStat is one token's survival tally within a PersistenceRecord
// (spec.md §6 "tokens: [{text, type?, persisted, non_self_persisted,
// seconds_visible}]").
type TokenStat struct {
	Text             string  `json:"text"`
	Type             string  `json:"type,omitempty"`
	Persisted        int     `json:"persisted"`
	NonSelfPersisted int     `json:"non_self_persisted"`
	SecondsVisible   float64 `json:"seconds_visible"`
}

// PersistenceBlock is the entry-level counters a WindowEntry accumulates
// (spec.md §3 WindowEntry, §6 persistence-stage output record).
type PersistenceBlock struct {
	RevisionsProcessed int         `json:"revisions_processed"`
	NonSelfProcessed   int         `json:"non_self_processed"`
	SecondsPossible    float64     `json:"seconds_possible"`
	Tokens             []TokenStat `json:"tokens"`
	Censored           bool        `json:"censored"`
	NonSelfCensored    bool        `json:"non_self_censored"`
}

// PersistenceRecord is the persistence-stage output record (spec.md §6):
// the input record plus a persistence block.
type PersistenceRecord struct {
	RevisionRecord
	Persistence PersistenceBlock `json:"persistence"`
}

// StatsBlock is the persistence block merged with the stats stage's
// per-revision aggregates (spec.md §4.3, §6 "Above + persistence merged
// with {...}").
type StatsBlock struct {
	PersistenceBlock
	TokensAdded             int     `json:"tokens_added"`
	PersistentTokens        int     `json:"persistent_tokens"`
	NonSelfPersistentTokens int     `json:"non_self_persistent_tokens"`
	SumLogPersisted         float64 `json:"sum_log_persisted"`
	SumLogNonSelfPersisted  float64 `json:"sum_log_non_self_persisted"`
	SumLogSecondsVisible    float64 `json:"sum_log_seconds_visible"`
}

// StatsRecord is the stats-stage output record (spec.md §6).
type StatsRecord struct {
	RevisionRecord
	Persistence StatsBlock `json:"persistence"`
}

// DropText clears the text field, the default shape for any stage output
// once the text has been consumed (CLI flag --keep-text restores it).
func (r RevisionRecord) DropText() RevisionRecord {
	r.Text = nil
	return r
}

// DropDiff clears the diff field, the default shape once the operation
// list has been consumed by the persistence stage (CLI flag --keep-diff
// restores it).
func (r RevisionRecord) DropDiff() RevisionRecord {
	r.Diff = nil
	return r
}

// DropTokens removes the per-token breakdown from a persistence block,
// leaving only the revision-level counters — the default shape for the
// stats stage's output (CLI flag --keep-tokens restores the breakdown).
func (b PersistenceBlock) DropTokens() PersistenceBlock {
	b.Tokens = nil
	return b
}

// OpsToOpDocs converts a diff stage's internal Operation list to its wire
// representation, populating Tokens only for operations that carry content
// (spec.md §6 "tokens present iff the op carries content").
func OpsToOpDocs(ops []*token.Operation) []*token.OpDoc {
	docs := make([]*token.OpDoc, len(ops))
	for i, op := range ops {
		docs[i] = OpToOpDoc(op)
	}
	return docs
}

// OpToOpDoc converts a single Operation, preferring InsertedTokens for
// insert/replace (the content that continues to exist going forward) since
// the wire format carries a single tokens array per operation.
func OpToOpDoc(op *token.Operation) *token.OpDoc {
	doc := &token.OpDoc{Name: op.Name, A1: op.A1, A2: op.A2, B1: op.B1, B2: op.B2}
	switch op.Name {
	case token.OpInsert, token.OpReplace:
		doc.Tokens = token.TextsSlice(op.InsertedTokens)
	case token.OpDelete:
		doc.Tokens = token.TextsSlice(op.RemovedTokens)
	}
	return doc
}

// NormalizeDoc maps a raw dump-shaped "contributor" field into mwpersist's
// own "user" shape (SPEC_FULL.md §C, ported from original_source/util.go's
// normalize_doc): {id, user_text} becomes {id, text}. Revisions with no
// contributor field pass through unchanged, including ones that already
// carry a user field directly.
func NormalizeDoc(r RevisionRecord) RevisionRecord {
	if r.Contributor == nil {
		return r
	}
	r.User = &UserMeta{ID: r.Contributor.ID, Text: r.Contributor.UserText}
	r.Contributor = nil
	return r
}
