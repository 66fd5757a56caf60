// Package stats implements the StatsReducer component (spec.md §4.3):
// per-revision aggregation of a PersistenceRecord's token survival tallies
// into log-scale sums, persistent-token counts, and censoring flags.
package stats

import (
	"math"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

// DefaultMinPersisted and DefaultMinVisibleSeconds mirror spec.md §4.3's defaults.
const (
	DefaultMinPersisted = 5
	DefaultMinVisibleSeconds = 14 * 24 * 3600 // 14 days
)

// Predicate reports whether a token's text should be counted. Reducer
// applies include ∧ ¬exclude, per spec.md §4.3.
type Predicate func(text string) bool

// AlwaysTrue and Never are the default include/exclude predicates: count
// everything, exclude nothing.
func AlwaysTrue(string) bool { return true }
func Never(string) bool      { return false }

// Reducer is the StatsReducer from spec.md §4.3.
type Reducer struct {
	MinPersisted int
	MinVisible   float64
	Include      Predicate
	Exclude      Predicate
}

// New constructs a Reducer with the spec's defaults; callers override
// fields directly (this mirrors the teacher's small-struct-literal
// configuration idiom rather than a functional-options API, since every
// field here is a simple required scalar or predicate).
func New() *Reducer {
	return &Reducer{
		MinPersisted: DefaultMinPersisted,
		MinVisible:   DefaultMinVisibleSeconds,
		Include:      AlwaysTrue,
		Exclude:      Never,
	}
}

// Reduce turns one PersistenceRecord into its StatsRecord (spec.md §4.3
// "Per-revision aggregates"). The tie-break and censoring policy is ported
// verbatim, including the documented non-rationalized behavior from spec.md
// §9 open question (a): a token that fails the time threshold can count as
// persistent via its persisted count while still tripping the censoring
// check. A token that meets the time threshold never reaches the censoring
// check.
func (red *Reducer) Reduce(p *record.PersistenceRecord) *record.StatsRecord {
	block := p.Persistence

	var (
		tokensAdded                                    int
		sumLogPersisted, sumLogNonSelf, sumLogSeconds  float64
		persistentTokens, nonSelfPersistentTokens      int
		censored, nonSelfCensored                      bool
	)

	for _, t := range block.Tokens {
		if !red.Include(t.Text) || red.Exclude(t.Text) {
			continue
		}
		tokensAdded++

		sumLogPersisted += math.Log(float64(t.Persisted) + 1)
		sumLogNonSelf += math.Log(float64(t.NonSelfPersisted) + 1)
		sumLogSeconds += math.Log(t.SecondsVisible + 1)

		// Look for time threshold.
		if t.SecondsVisible >= red.MinVisible {
			persistentTokens++
			nonSelfPersistentTokens++
			continue
		}

		// Look for review threshold. The persisted-count check below and
		// the censoring check that follows it are independent: a token
		// can trip the persisted-count threshold while the revision
		// still counts as censored (spec.md §9 open question (a), "do
		// not try to rationalize").
		if t.Persisted >= red.MinPersisted {
			persistentTokens++
		}
		if t.NonSelfPersisted >= red.MinPersisted {
			nonSelfPersistentTokens++
		}

		// Check for censoring.
		if block.SecondsPossible < red.MinVisible {
			censored = true
			nonSelfCensored = true
		} else {
			if block.RevisionsProcessed < red.MinPersisted {
				censored = true
			}
			if block.NonSelfProcessed < red.MinPersisted {
				nonSelfCensored = true
			}
		}
	}

	// The stats-stage censored/non_self_censored (spec.md §4.3, threshold-
	// driven) supersede the persistence-stage's own censored flag (spec.md
	// §4.2, purely "was this entry flushed at end-of-page"): the two are
	// related but not identical, and the stats-stage value is what the
	// final output record carries.
	block.Censored = censored
	block.NonSelfCensored = nonSelfCensored

	return &record.StatsRecord{
		RevisionRecord: p.RevisionRecord,
		Persistence: record.StatsBlock{
			PersistenceBlock:        block,
			TokensAdded:             tokensAdded,
			PersistentTokens:        persistentTokens,
			NonSelfPersistentTokens: nonSelfPersistentTokens,
			SumLogPersisted:         sumLogPersisted,
			SumLogNonSelfPersisted:  sumLogNonSelf,
			SumLogSecondsVisible:    sumLogSeconds,
		},
	}
}
