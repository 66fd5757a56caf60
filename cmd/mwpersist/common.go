package main

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/diffengine"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/pipeline"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/stats"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/sunset"
)

// bindPersistenceFlags registers the window/revert-radius/keep-* flags
// shared by every subcommand that runs the diff or persistence stage
// (spec.md §6 CLI surface).
func bindPersistenceFlags(cmd *cobra.Command) {
	cmd.Flags().Int("window", 50, "persistence window size, in revisions")
	cmd.Flags().Int("revert-radius", 15, "maximum revision distance a revert can span")
	cmd.Flags().Bool("keep-text", false, "retain revision text in output records")
	cmd.Flags().Bool("keep-diff", false, "retain diff.ops in output records")
	cmd.Flags().String("sunset", "now", `history capture instant ("now", RFC3339, or a natural-language expression)`)
	cmd.Flags().Duration("timeout", 30*time.Second, "per-revision diff timeout")
	cmd.Flags().Ints("namespaces", nil, "restrict processing to these page namespaces")
	cmd.Flags().Int("threads", 1, "number of pages to process concurrently")
	cmd.Flags().StringP("output", "o", "-", "output path (default stdout)")
	cmd.Flags().String("compress", "", `output compression ("gzip" or empty)`)

	for _, name := range []string{"window", "revert-radius", "keep-text", "keep-diff", "sunset", "timeout", "namespaces", "threads", "output", "compress"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

// bindStatsFlags registers the min-persisted/min-visible/include/exclude
// flags shared by every subcommand that runs the stats stage.
func bindStatsFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-persisted", stats.DefaultMinPersisted, "minimum persisted-revision count for a token to count as persistent")
	cmd.Flags().Float64("min-visible", stats.DefaultMinVisibleSeconds, "minimum seconds-visible for a token to count as persistent")
	cmd.Flags().StringArray("include", nil, "regular expressions a token's text must match at least one of (default: all)")
	cmd.Flags().StringArray("exclude", nil, "regular expressions that exclude a matching token's text")
	cmd.Flags().Bool("keep-tokens", true, "retain the per-token breakdown in stats output")

	for _, name := range []string{"min-persisted", "min-visible", "include", "exclude", "keep-tokens"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

// expandProfileRefs replaces any "@path" entry with the include or exclude
// list (picked by forExclude) of the token profile loaded from path,
// leaving ordinary regex patterns untouched.
func expandProfileRefs(patterns []string, forExclude bool) ([]string, error) {
	var out []string
	for _, p := range patterns {
		path, ok := strings.CutPrefix(p, "@")
		if !ok {
			out = append(out, p)
			continue
		}
		profile, err := mwconfig.LoadTokenProfile(path)
		if err != nil {
			return nil, err
		}
		if forExclude {
			out = append(out, profile.Exclude...)
		} else {
			out = append(out, profile.Include...)
		}
	}
	return out, nil
}

// compilePredicate ORs a list of regular expressions into a single
// stats.Predicate; an empty list yields a predicate that never matches.
// Entries prefixed "@" are expanded against a token profile file (spec.md
// §A.2's "--include=@whitespace") before compilation.
func compilePredicate(patterns []string, forExclude bool) (stats.Predicate, error) {
	patterns, err := expandProfileRefs(patterns, forExclude)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return stats.Never, nil
	}
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		res[i] = re
	}
	return func(text string) bool {
		for _, re := range res {
			if re.MatchString(text) {
				return true
			}
		}
		return false
	}, nil
}

// buildReducer assembles a stats.Reducer from viper's currently bound
// flag values (spec.md §4.3 parameters).
func buildReducer() (*stats.Reducer, error) {
	include, err := compilePredicate(viper.GetStringSlice(mwconfig.KeyInclude), false)
	if err != nil {
		return nil, err
	}
	if len(viper.GetStringSlice(mwconfig.KeyInclude)) == 0 {
		include = stats.AlwaysTrue
	}
	exclude, err := compilePredicate(viper.GetStringSlice(mwconfig.KeyExclude), true)
	if err != nil {
		return nil, err
	}

	return &stats.Reducer{
		MinPersisted: viper.GetInt(mwconfig.KeyMinPersisted),
		MinVisible:   viper.GetFloat64(mwconfig.KeyMinVisible),
		Include:      include,
		Exclude:      exclude,
	}, nil
}

// buildPipelineConfig assembles pipeline.Config from viper's currently
// bound flag values. withEngine controls whether a diff engine is
// attached — subcommands that only ever consume precomputed diff.ops
// (diffs2persistence) pass false.
func buildPipelineConfig(withEngine bool) (func() pipeline.Config, error) {
	reducer, err := buildReducer()
	if err != nil {
		return nil, err
	}

	sunsetTime, err := sunset.Parse(viper.GetString(mwconfig.KeySunset), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var engine diffengine.Engine
	if withEngine {
		engine = diffengine.NewDMPEngine()
	}

	return func() pipeline.Config {
		return pipeline.Config{
			WindowSize:   viper.GetInt(mwconfig.KeyWindow),
			RevertRadius: viper.GetInt(mwconfig.KeyRevertRadius),
			Reducer:      reducer,
			Engine:       engine,
			Sunset:       sunsetTime,
			KeepText:     viper.GetBool(mwconfig.KeyKeepText),
			KeepDiff:     viper.GetBool(mwconfig.KeyKeepDiff),
			KeepTokens:   viper.GetBool(mwconfig.KeyKeepTokens),
		}
	}, nil
}

// namespaceFilter reports whether a page's namespace passes the
// --namespaces restriction (spec.md §C, supplemented from original_source:
// an empty list passes everything).
func namespaceFilter(namespaces []int) func(ns int) bool {
	if len(namespaces) == 0 {
		return func(int) bool { return true }
	}
	allowed := make(map[int]struct{}, len(namespaces))
	for _, ns := range namespaces {
		allowed[ns] = struct{}{}
	}
	return func(ns int) bool {
		_, ok := allowed[ns]
		return ok
	}
}

// diffContext wraps ctx with the --timeout deadline a single revision's
// diff computation gets before the caller must substitute a trivial
// delete-all/insert-all script (spec.md §5 "Suspension points").
func diffContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, viper.GetDuration(mwconfig.KeyTimeout))
}
