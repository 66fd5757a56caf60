// Package pipeline drives the per-page Diff → Persistence → Stats sequence
// (spec.md §5: "single-threaded per page... never suspends") and composes
// it with a bounded-concurrency driver across pages.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/diffengine"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/diffstate"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/revert"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/stats"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/window"
)

// ErrMalformedRecord is returned when an input revision has neither text
// nor a precomputed diff (spec.md §7 MalformedRecord: "neither text nor
// checksum available").
var ErrMalformedRecord = errors.New("pipeline: revision has neither text nor diff.ops")

// Config bundles the knobs a single page's pipeline needs, mirroring the
// CLI flags named in spec.md §6.
type Config struct {
	WindowSize   int
	RevertRadius int
	Reducer      *stats.Reducer
	Engine       diffengine.Engine // nil when every revision supplies precomputed ops
	Sunset       time.Time
	KeepText     bool
	KeepDiff     bool
	KeepTokens   bool
}

// Page is a single page's pipeline: one DiffState, one Window, one Reducer
// invocation per revision. It is not safe for concurrent use (spec.md §5).
type Page struct {
	cfg   Config
	state *diffstate.State
	win   *window.Window

	revisions       int
	reverts         int
	tokensPersisted int64
}

// NewPage constructs a fresh Page pipeline. Each page gets its own
// DiffState (no prior tokens) and Window (empty buffer), per spec.md §3
// "Lifecycle".
func NewPage(cfg Config) *Page {
	detector := revert.NewDetector(cfg.RevertRadius)
	return &Page{
		cfg:   cfg,
		state: diffstate.New(cfg.Engine, detector),
		win:   window.New(cfg.WindowSize, cfg.Sunset),
	}
}

// update runs one revision through DiffState, dispatching to the raw-text
// or precomputed-ops entry mode depending on what the input record
// supplies (spec.md §4.1 "Two entry modes").
func (p *Page) update(ctx context.Context, in record.RevisionRecord) (diffstate.Result, error) {
	meta := in.Meta()
	var res diffstate.Result
	var err error
	switch {
	case in.Text != nil:
		res, err = p.state.Update(ctx, *in.Text, meta)
	case in.Diff != nil:
		res, err = p.state.UpdateOps(in.SHA1, in.Diff.Ops, meta)
	default:
		return diffstate.Result{}, ErrMalformedRecord
	}
	if err != nil {
		return diffstate.Result{}, err
	}

	if res.TimedOut {
		log.Printf("[pipeline] revision %d: diff timed out, substituted a trivial edit script", meta.ID)
	}
	if res.Reverted {
		log.Printf("[pipeline] revision %d: detected as a revert", meta.ID)
	}

	p.revisions++
	if res.Reverted {
		p.reverts++
	}
	p.tokensPersisted += int64(len(res.Current))
	return res, nil
}

// Counts reports the revisions processed, reverts detected, and total
// token-persist events observed so far, the raw material for the driver's
// per-page metrics (SPEC_FULL.md §A.5).
func (p *Page) Counts() (revisions, reverts int, tokensPersisted int64) {
	return p.revisions, p.reverts, p.tokensPersisted
}

// Diffs processes one input revision through the diff stage only (the
// dump2diffs subcommand): it runs DiffState and attaches the resulting
// operation list as diff.ops, dropping text unless KeepText is set. A
// reverted revision carries an empty ops list — the persistence stage
// re-derives the revert independently from sha1, per spec.md §9 "the
// revert detector stores the live Version object".
func (p *Page) Diffs(ctx context.Context, in record.RevisionRecord) (record.RevisionRecord, error) {
	res, err := p.update(ctx, in)
	if err != nil {
		return record.RevisionRecord{}, err
	}

	out := in
	if !p.cfg.KeepText {
		out = out.DropText()
	}
	out.Diff = &record.DiffDoc{Ops: record.OpsToOpDocs(res.Ops), TimedOut: res.TimedOut}
	return out, nil
}

// Persist processes one revision through the diff and persistence stages
// (the diffs2persistence / dump2stats / revdocs2stats subcommands' shared
// core), returning the PersistenceRecord the window emitted as a result of
// this push, if any (window.Window.Push emits at most one record per
// call).
func (p *Page) Persist(ctx context.Context, in record.RevisionRecord) (*record.PersistenceRecord, error) {
	res, err := p.update(ctx, in)
	if err != nil {
		return nil, err
	}

	src := in
	if !p.cfg.KeepText {
		src = src.DropText()
	}
	if !p.cfg.KeepDiff {
		src = src.DropDiff()
	}

	return p.win.Push(src, res.Current, res.Added), nil
}

// Flush closes out the page at end-of-history, returning the censored
// tail of the window buffer (spec.md §4.2 "End-of-page flush").
func (p *Page) Flush() []*record.PersistenceRecord {
	return p.win.Flush()
}

// Reduce runs the stats reducer over one PersistenceRecord (the
// persistence2stats / dump2stats / revdocs2stats subcommands' shared
// core), dropping the per-token breakdown unless KeepTokens is set.
func (p *Page) Reduce(pr *record.PersistenceRecord) *record.StatsRecord {
	out := p.cfg.Reducer.Reduce(pr)
	if !p.cfg.KeepTokens {
		out.Persistence.PersistenceBlock = out.Persistence.PersistenceBlock.DropTokens()
	}
	return out
}

// RunFull drives the complete Diff→Persistence→Stats pipeline over one
// page's revisions without materializing intermediate JSON (spec.md §C,
// the revdocs2stats full pipeline): for each input revision it runs
// Persist, then immediately Reduces and emits any record the window
// evicted, finally flushing and reducing the censored tail at end-of-page.
func (p *Page) RunFull(ctx context.Context, revisions []record.RevisionRecord) ([]*record.StatsRecord, error) {
	out := make([]*record.StatsRecord, 0, len(revisions))
	for _, rev := range revisions {
		pr, err := p.Persist(ctx, rev)
		if err != nil {
			return nil, err
		}
		if pr != nil {
			out = append(out, p.Reduce(pr))
		}
	}
	for _, pr := range p.Flush() {
		out = append(out, p.Reduce(pr))
	}
	return out, nil
}
