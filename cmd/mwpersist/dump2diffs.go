package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/pipeline"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

var dump2diffsCmd = &cobra.Command{
	Use:   "dump2diffs [input]",
	Short: "Diff each page's revision history, emitting an operation list per revision",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump2Diffs(rootCtx, args)
	},
}

func init() {
	bindPersistenceFlags(dump2diffsCmd)
	rootCmd.AddCommand(dump2diffsCmd)
}

func runDump2Diffs(ctx context.Context, args []string) error {
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

	newConfig, err := buildPipelineConfig(true)
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
		out := make([]record.RevisionRecord, 0, len(revisions))
		for _, rev := range revisions {
			rctx, cancel := diffContext(ctx)
			diffed, err := page.Diffs(rctx, rev)
			cancel()
			if err != nil {
				return err
			}
			out = append(out, diffed)
		}
		if err := writeRecords(w, out); err != nil {
			return err
		}
	}
	return nil
}
