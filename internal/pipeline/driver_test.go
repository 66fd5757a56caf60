package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

func pageOf(pageID int64, texts ...string) []record.RevisionRecord {
	out := make([]record.RevisionRecord, len(texts))
	for i, text := range texts {
		rev := textRevision(pageID*100+int64(i), i, text)
		rev.Page.ID = pageID
		out[i] = rev
	}
	return out
}

func TestDriverRunPreservesPageOrderDespiteConcurrency(t *testing.T) {
	pages := [][]record.RevisionRecord{
		pageOf(1, "a", "a b"),
		pageOf(2, "c", "c d"),
		pageOf(3, "e", "e f"),
	}

	driver := &Driver{
		NewConfig: func() Config { return testConfig(50) },
		Threads:   3,
	}

	var got [][]*record.StatsRecord
	err := driver.Run(context.Background(), pages, func(page []*record.StatsRecord) error {
		got = append(got, page)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(pages) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(pages))
	}
	for i, page := range got {
		if len(page) == 0 {
			t.Fatalf("page %d: no output records", i)
		}
		if page[0].Page.ID != pages[i][0].Page.ID {
			t.Errorf("page %d: Page.ID = %d, want %d (sink must see pages in input order)", i, page[0].Page.ID, pages[i][0].Page.ID)
		}
	}
}

func TestDriverRunPropagatesSinkError(t *testing.T) {
	pages := [][]record.RevisionRecord{pageOf(1, "a")}
	driver := &Driver{NewConfig: func() Config { return testConfig(50) }, Threads: 1}

	wantErr := fmt.Errorf("sink failed")
	err := driver.Run(context.Background(), pages, func(page []*record.StatsRecord) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("Run error = %v, want %v", err, wantErr)
	}
}

func TestDriverRunDefaultsZeroThreadsToOne(t *testing.T) {
	pages := [][]record.RevisionRecord{pageOf(1, "a")}
	driver := &Driver{NewConfig: func() Config { return testConfig(50) }, Threads: 0}

	var n int
	err := driver.Run(context.Background(), pages, func(page []*record.StatsRecord) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Errorf("sink called %d times, want 1", n)
	}
}
