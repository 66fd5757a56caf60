package main

import (
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/pipeline"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/sqlstore"
)

// buildSink chooses the revdocs2stats output sink: the file sink named by
// --output by default, or the SQL sink when --store-dsn is set. The
// returned close func must run after the driver finishes.
func buildSink() (pipeline.Sink, func(), error) {
	dsn := viper.GetString(mwconfig.KeyStoreDSN)
	if dsn == "" {
		w, err := openWriter(viper.GetString(mwconfig.KeyOutput), viper.GetString(mwconfig.KeyCompress))
		if err != nil {
			return nil, nil, err
		}
		sink := func(page []*record.StatsRecord) error {
			return writeRecords(w, page)
		}
		return sink, func() { w.Close() }, nil
	}

	store, err := sqlstore.Open(rootCtx, dsn)
	if err != nil {
		return nil, nil, err
	}
	sink := func(page []*record.StatsRecord) error {
		return store.Insert(rootCtx, page)
	}
	return sink, func() { store.Close() }, nil
}
