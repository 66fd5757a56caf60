package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/pipeline"
)

var dump2statsCmd = &cobra.Command{
	Use:   "dump2stats [input]",
	Short: "Run the full diff-persistence-stats pipeline over raw revision text, page by page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump2Stats(rootCtx, args)
	},
}

func init() {
	bindPersistenceFlags(dump2statsCmd)
	bindStatsFlags(dump2statsCmd)
	rootCmd.AddCommand(dump2statsCmd)
}

func runDump2Stats(ctx context.Context, args []string) error {
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
		out, err := page.RunFull(ctx, revisions)
		if err != nil {
			return err
		}
		if err := writeRecords(w, out); err != nil {
			return err
		}
	}
	return nil
}
