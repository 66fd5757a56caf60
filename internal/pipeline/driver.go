package pipeline

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/metrics"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

// Driver runs Page pipelines across many pages with bounded concurrency —
// a property of the driver, not the core (spec.md §5 "Inter-page
// parallelism is a property of the driver, not the core"). Distinct pages
// have disjoint state and results are serialized to Sink in page order.
type Driver struct {
	NewConfig func() Config
	Threads   int

	// Recorder, if set, receives per-page counters (SPEC_FULL.md §A.5). Safe
	// to leave nil; otel's no-op MeterProvider makes a live Recorder cheap
	// enough to always build instead, but callers that never called
	// metrics.Configure needn't bother.
	Recorder *metrics.Recorder
}

// Sink receives one page's completed StatsRecords in order. Implementations
// typically marshal to JSON lines or write to the SQL sink.
type Sink func(page []*record.StatsRecord) error

// Run processes every page in pages, up to d.Threads pages concurrently,
// and once all pages have finished delivers each page's results to sink in
// the order of pages (spec.md §5 "Output revisions are emitted in input
// order").
func (d *Driver) Run(ctx context.Context, pages [][]record.RevisionRecord, sink Sink) error {
	threads := d.Threads
	if threads <= 0 {
		threads = 1
	}

	results := make([][]*record.StatsRecord, len(pages))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, revisions := range pages {
		i, revisions := i, revisions
		group.Go(func() error {
			start := time.Now()
			p := NewPage(d.NewConfig())
			out, err := p.RunFull(gctx, revisions)
			if err != nil {
				log.Printf("[driver] page %d: failed after %s: %v", pageID(revisions), time.Since(start), err)
				return err
			}
			revs, reverts, _ := p.Counts()
			log.Printf("[driver] page %d: %d revisions, %d reverts, %s", pageID(revisions), revs, reverts, time.Since(start))
			results[i] = out
			d.record(gctx, p, time.Since(start))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, page := range results {
		if err := sink(page); err != nil {
			return err
		}
	}
	return nil
}

// pageID reports a page's id for logging, or -1 for an empty page.
func pageID(revisions []record.RevisionRecord) int64 {
	if len(revisions) == 0 {
		return -1
	}
	return revisions[0].Page.ID
}

// record reports one completed page's counters to d.Recorder, a no-op when
// Recorder is nil.
func (d *Driver) record(ctx context.Context, p *Page, elapsed time.Duration) {
	if d.Recorder == nil {
		return
	}
	revisions, reverts, tokensPersisted := p.Counts()
	d.Recorder.Pages.Add(ctx, 1)
	d.Recorder.Revisions.Add(ctx, int64(revisions))
	d.Recorder.Reverts.Add(ctx, int64(reverts))
	d.Recorder.TokensPersisted.Add(ctx, tokensPersisted)
	d.Recorder.PageDuration.Record(ctx, elapsed.Seconds())
}
