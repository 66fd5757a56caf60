// Command mwpersist computes content-persistence statistics over
// MediaWiki-style revision history dumps.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/metrics"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
)

// rootCtx is canceled on SIGINT/SIGTERM; every subcommand threads it
// through to its pipeline driver so a ^C stops cleanly between pages.
var rootCtx context.Context

// jsonOutput controls whether human-facing summaries (doctor, etc.) print
// as formatted JSON instead of plain text.
var jsonOutput bool

var cfgFile string

// shutdownMetrics flushes the MeterProvider installed once flags are parsed.
var shutdownMetrics = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:           "mwpersist",
	Short:         "Measure content persistence across a page's revision history",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := mwconfig.Load(cfgFile); err != nil {
			return err
		}
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		shutdownMetrics = metrics.Configure(viper.GetBool(mwconfig.KeyVerbose))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.mwpersist.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON summaries")
	rootCmd.PersistentFlags().Bool("verbose", false, "emit otel metrics to stdout while processing")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func main() {
	ctx, cancel := contextWithSignals()
	defer cancel()
	rootCtx = ctx

	defer func() { _ = shutdownMetrics(ctx) }()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mwpersist:", err)
		os.Exit(1)
	}
}
