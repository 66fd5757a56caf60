package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/metrics"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/pipeline"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

var revdocs2statsCmd = &cobra.Command{
	Use:   "revdocs2stats [input]",
	Short: "Run the full pipeline over raw revision text with bounded inter-page concurrency",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRevdocs2Stats(rootCtx, args)
	},
}

func init() {
	bindPersistenceFlags(revdocs2statsCmd)
	bindStatsFlags(revdocs2statsCmd)
	revdocs2statsCmd.Flags().String("store-dsn", "", "optional SQL sink DSN (dolt:// for embedded, mysql:// for a Dolt/MySQL-wire server)")
	_ = viper.BindPFlag(mwconfig.KeyStoreDSN, revdocs2statsCmd.Flags().Lookup("store-dsn"))
	rootCmd.AddCommand(revdocs2statsCmd)
}

func runRevdocs2Stats(ctx context.Context, args []string) error {
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

	filtered := make([][]record.RevisionRecord, 0, len(pages))
	for _, revisions := range pages {
		if len(revisions) == 0 || !allowNS(revisions[0].Page.Namespace) {
			continue
		}
		filtered = append(filtered, revisions)
	}

	sink, closeSink, err := buildSink()
	if err != nil {
		return err
	}
	defer closeSink()

	recorder, err := metrics.NewRecorder()
	if err != nil {
		return err
	}

	driver := &pipeline.Driver{
		NewConfig: newConfig,
		Threads:   viper.GetInt(mwconfig.KeyThreads),
		Recorder:  recorder,
	}
	return driver.Run(ctx, filtered, sink)
}
