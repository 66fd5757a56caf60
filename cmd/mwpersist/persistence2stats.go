package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

var persistence2statsCmd = &cobra.Command{
	Use:   "persistence2stats [input]",
	Short: "Reduce a diffs2persistence output stream into per-revision statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPersistence2Stats(args)
	},
}

func init() {
	bindStatsFlags(persistence2statsCmd)
	persistence2statsCmd.Flags().StringP("output", "o", "-", "output path (default stdout)")
	persistence2statsCmd.Flags().String("compress", "", `output compression ("gzip" or empty)`)
	_ = viper.BindPFlag(mwconfig.KeyOutput, persistence2statsCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag(mwconfig.KeyCompress, persistence2statsCmd.Flags().Lookup("compress"))
	rootCmd.AddCommand(persistence2statsCmd)
}

func runPersistence2Stats(args []string) error {
	inPath := ""
	if len(args) == 1 {
		inPath = args[0]
	}

	r, err := openReader(inPath, viper.GetString(mwconfig.KeyCompress))
	if err != nil {
		return err
	}
	defer r.Close()

	reducer, err := buildReducer()
	if err != nil {
		return err
	}
	keepTokens := viper.GetBool(mwconfig.KeyKeepTokens)

	w, err := openWriter(viper.GetString(mwconfig.KeyOutput), viper.GetString(mwconfig.KeyCompress))
	if err != nil {
		return err
	}
	defer w.Close()

	dec := jsonDecoder(r)
	enc := jsonEncoder(w)
	for {
		var pr record.PersistenceRecord
		if err := dec.Decode(&pr); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		out := reducer.Reduce(&pr)
		if !keepTokens {
			out.Persistence.PersistenceBlock = out.Persistence.PersistenceBlock.DropTokens()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
