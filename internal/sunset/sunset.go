// Package sunset parses the --sunset flag (spec.md §4.2 "sunset_timestamp",
// §6): the wall-clock instant the source revision history was captured,
// used as the end of seconds_possible for revisions still in the window at
// end-of-page. The flag accepts the literal "now", a strict RFC3339
// instant, or a natural-language expression ("2 weeks ago", "last
// Tuesday") resolved by olebedev/when.
package sunset

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Parse resolves a --sunset value against "now" (reference), so relative
// expressions like "3 days ago" are anchored to the moment the flag is
// parsed rather than to each page's own timestamps.
func Parse(value string, now time.Time) (time.Time, error) {
	switch value {
	case "", "now":
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	r, err := parser.Parse(value, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("sunset: %w", err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("sunset: could not parse %q as a time", value)
	}
	return r.Time, nil
}
