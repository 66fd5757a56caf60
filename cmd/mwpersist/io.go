package main

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

// openReader opens path (or stdin for "-"), transparently gunzipping when
// compress is "gzip" or the path ends in .gz. Compressed file I/O is named
// in spec.md §1 as an external collaborator the core never touches; this
// is the CLI's thin, compatibility-only edge of that concern — bzip2 and
// snappy are intentionally unsupported (see DESIGN.md).
func openReader(path, compress string) (io.ReadCloser, error) {
	var f io.ReadCloser
	if path == "" || path == "-" {
		f = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		f = file
	}

	if compress == "gzip" || strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return gzipReadCloser{gz, f}, nil
	}
	return f, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g gzipReadCloser) Close() error {
	_ = g.Reader.Close()
	return g.under.Close()
}

// openWriter opens path (or stdout for "-"/""), gzipping when requested.
func openWriter(path, compress string) (io.WriteCloser, error) {
	var f io.WriteCloser
	if path == "" || path == "-" {
		f = nopWriteCloser{os.Stdout}
	} else {
		file, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		f = file
	}

	if compress == "gzip" || strings.HasSuffix(path, ".gz") {
		return gzipWriteCloser{gzip.NewWriter(f), f}, nil
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type gzipWriteCloser struct {
	*gzip.Writer
	under io.Closer
}

func (g gzipWriteCloser) Close() error {
	if err := g.Writer.Close(); err != nil {
		return err
	}
	return g.under.Close()
}

// readPages decodes newline-delimited RevisionRecord JSON from r, running
// each record through record.NormalizeDoc (mapping a raw dump's
// "contributor" field to mwpersist's "user" shape) and grouping consecutive
// records sharing the same Page.ID into pages (spec.md §1 "chronological,
// page-partitioned stream"). The input is assumed already partitioned by
// page; readPages only splits on the boundary, it does not sort or bucket
// non-contiguous runs of the same page.
func readPages(r io.Reader) ([][]record.RevisionRecord, error) {
	dec := json.NewDecoder(bufio.NewReader(r))

	var pages [][]record.RevisionRecord
	var current []record.RevisionRecord
	var currentPageID int64
	haveCurrent := false

	for dec.More() {
		var rec record.RevisionRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, err
		}
		rec = record.NormalizeDoc(rec)
		if !haveCurrent || rec.Page.ID != currentPageID {
			if haveCurrent {
				pages = append(pages, current)
			}
			current = nil
			currentPageID = rec.Page.ID
			haveCurrent = true
		}
		current = append(current, rec)
	}
	if haveCurrent {
		pages = append(pages, current)
	}
	return pages, nil
}

// jsonDecoder returns a streaming decoder over newline-delimited JSON, for
// subcommands that reduce a stream without needing page boundaries.
func jsonDecoder(r io.Reader) *json.Decoder {
	return json.NewDecoder(bufio.NewReader(r))
}

// jsonEncoder returns a streaming encoder writing one JSON value per line.
func jsonEncoder(w io.Writer) *json.Encoder {
	return json.NewEncoder(w)
}

// writeRecords encodes one JSON value per line to w.
func writeRecords[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
