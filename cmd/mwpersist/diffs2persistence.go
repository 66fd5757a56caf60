package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/pipeline"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

var diffs2persistenceCmd = &cobra.Command{
	Use:   "diffs2persistence [input]",
	Short: "Replay a dump2diffs output stream through the persistence window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiffs2Persistence(rootCtx, args)
	},
}

func init() {
	bindPersistenceFlags(diffs2persistenceCmd)
	rootCmd.AddCommand(diffs2persistenceCmd)
}

func runDiffs2Persistence(ctx context.Context, args []string) error {
	inPath := ""
	if len(args) == 1 {
		inPath = args[0]
	}

	r, err := openReader(inPath, viper.GetString(mwconfig.KeyCompress))
	if err != nil {
		return err
	}
	defer r.Close()

	pages, err := readPages(r)
	if err != nil {
		return err
	}

	// No diff engine required: every input revision already carries
	// diff.ops (spec.md §4.1 "precomputed operation documents" path).
	newConfig, err := buildPipelineConfig(false)
	if err != nil {
		return err
	}
	allowNS := namespaceFilter(viper.GetIntSlice(mwconfig.KeyNamespaces))

	w, err := openWriter(viper.GetString(mwconfig.KeyOutput), viper.GetString(mwconfig.KeyCompress))
	if err != nil {
		return err
	}
	defer w.Close()

	for _, revisions := range pages {
		if len(revisions) == 0 || !allowNS(revisions[0].Page.Namespace) {
			continue
		}

		page := pipeline.NewPage(newConfig())
		out := make([]*record.PersistenceRecord, 0, len(revisions))
		for _, rev := range revisions {
			pr, err := page.Persist(ctx, rev)
			if err != nil {
				return err
			}
			if pr != nil {
				out = append(out, pr)
			}
		}
		out = append(out, page.Flush()...)
		if err := writeRecords(w, out); err != nil {
			return err
		}
	}
	return nil
}
