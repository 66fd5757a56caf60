package stats

import (
	"math"
	"testing"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

func block(tokens ...record.TokenStat) *record.PersistenceRecord {
	return &record.PersistenceRecord{
		Persistence: record.PersistenceBlock{
			RevisionsProcessed: 20,
			NonSelfProcessed:   20,
			SecondsPossible:    30 * 24 * 3600,
			Tokens:             tokens,
		},
	}
}

func TestReducePersistentByRevisionCount(t *testing.T) {
	r := New()
	out := r.Reduce(block(record.TokenStat{Text: "x", Persisted: 5, NonSelfPersisted: 5, SecondsVisible: 100}))
	if out.Persistence.PersistentTokens != 1 {
		t.Errorf("PersistentTokens = %d, want 1", out.Persistence.PersistentTokens)
	}
	if out.Persistence.Censored {
		t.Error("token met the revision-count threshold, should not be censored")
	}
}

func TestReducePersistentByTimeThreshold(t *testing.T) {
	r := New()
	out := r.Reduce(block(record.TokenStat{Text: "x", Persisted: 1, SecondsVisible: float64(r.MinVisible) + 1}))
	if out.Persistence.PersistentTokens != 1 {
		t.Errorf("PersistentTokens = %d, want 1 (time threshold met)", out.Persistence.PersistentTokens)
	}
}

func TestReduceCensoredWhenNeitherThresholdReachableYet(t *testing.T) {
	r := New()
	p := &record.PersistenceRecord{
		Persistence: record.PersistenceBlock{
			RevisionsProcessed: 2, // below MinPersisted
			SecondsPossible:    100, // below MinVisible
			Tokens:             []record.TokenStat{{Text: "x", Persisted: 1, SecondsVisible: 50}},
		},
	}
	out := r.Reduce(p)
	if out.Persistence.PersistentTokens != 0 {
		t.Errorf("PersistentTokens = %d, want 0", out.Persistence.PersistentTokens)
	}
	if !out.Persistence.Censored {
		t.Error("expected Censored=true: the entry never had enough time/revisions to decide")
	}
}

func TestReduceNotCensoredWhenThresholdsWereReachable(t *testing.T) {
	r := New()
	// RevisionsProcessed and SecondsPossible both comfortably exceed the
	// minimums, so a token that still failed both checks is a genuine
	// non-persistent token, not a censored one.
	out := r.Reduce(block(record.TokenStat{Text: "x", Persisted: 1, SecondsVisible: 10}))
	if out.Persistence.Censored {
		t.Error("thresholds were reachable, should not be censored")
	}
	if out.Persistence.PersistentTokens != 0 {
		t.Errorf("PersistentTokens = %d, want 0", out.Persistence.PersistentTokens)
	}
}

func TestReduceTieBreakTimeThresholdSkipsCensoring(t *testing.T) {
	// spec.md §9 open question (a): a token can satisfy the time threshold
	// (so it counts as persistent) while the entry's own revision count is
	// still below MinPersisted (so the revision-count branch would, on its
	// own, call it censored). The censored flag is never set once the token
	// already counted as persistent via the time branch.
	r := New()
	p := &record.PersistenceRecord{
		Persistence: record.PersistenceBlock{
			RevisionsProcessed: 1,
			SecondsPossible:    float64(r.MinVisible) * 2,
			Tokens:             []record.TokenStat{{Text: "x", Persisted: 1, SecondsVisible: float64(r.MinVisible) + 1}},
		},
	}
	out := r.Reduce(p)
	if out.Persistence.PersistentTokens != 1 {
		t.Errorf("PersistentTokens = %d, want 1", out.Persistence.PersistentTokens)
	}
	if out.Persistence.Censored {
		t.Error("the time threshold was met, so censored must not be set even though RevisionsProcessed < MinPersisted")
	}
}

func TestReducePersistentAndCensoredAreIndependent(t *testing.T) {
	// spec.md §9 open question (a): the persisted-count check and the
	// censoring check run independently of each other whenever the time
	// threshold fails. A token can meet MinPersisted on its own revision
	// count while the entry's RevisionsProcessed still falls short of
	// MinPersisted, so persistent_tokens increments AND censored is set,
	// "do not try to rationalize" away either one.
	r := New()
	p := &record.PersistenceRecord{
		Persistence: record.PersistenceBlock{
			RevisionsProcessed: 2, // below MinPersisted
			SecondsPossible:    float64(r.MinVisible) * 2,
			Tokens:             []record.TokenStat{{Text: "x", Persisted: r.MinPersisted, SecondsVisible: 1}},
		},
	}
	out := r.Reduce(p)
	if out.Persistence.PersistentTokens != 1 {
		t.Errorf("PersistentTokens = %d, want 1 (token's own persisted count met MinPersisted)", out.Persistence.PersistentTokens)
	}
	if !out.Persistence.Censored {
		t.Error("expected Censored=true even though the token counted as persistent: the two checks are independent")
	}
}

func TestReduceExcludeAndIncludePredicates(t *testing.T) {
	r := New()
	r.Include = func(text string) bool { return text != "skip-me" }
	p := block(
		record.TokenStat{Text: "skip-me", Persisted: 5},
		record.TokenStat{Text: "keep-me", Persisted: 5},
	)
	out := r.Reduce(p)
	if out.Persistence.TokensAdded != 1 {
		t.Errorf("TokensAdded = %d, want 1 (skip-me excluded)", out.Persistence.TokensAdded)
	}
}

func TestReduceSumLogAccumulates(t *testing.T) {
	r := New()
	out := r.Reduce(block(record.TokenStat{Text: "x", Persisted: 3, NonSelfPersisted: 2, SecondsVisible: 9}))
	wantPersisted := math.Log(4)
	wantNonSelf := math.Log(3)
	wantSeconds := math.Log(10)
	if math.Abs(out.Persistence.SumLogPersisted-wantPersisted) > 1e-9 {
		t.Errorf("SumLogPersisted = %v, want %v", out.Persistence.SumLogPersisted, wantPersisted)
	}
	if math.Abs(out.Persistence.SumLogNonSelfPersisted-wantNonSelf) > 1e-9 {
		t.Errorf("SumLogNonSelfPersisted = %v, want %v", out.Persistence.SumLogNonSelfPersisted, wantNonSelf)
	}
	if math.Abs(out.Persistence.SumLogSecondsVisible-wantSeconds) > 1e-9 {
		t.Errorf("SumLogSecondsVisible = %v, want %v", out.Persistence.SumLogSecondsVisible, wantSeconds)
	}
}
