// Package sqlstore is the optional SQL sink for StatsRecords (SPEC_FULL.md
// §B.3/§B.4): a revision_stats table reachable either through an embedded,
// in-process Dolt database (github.com/dolthub/driver) or a remote
// Dolt/MySQL-wire server (github.com/go-sql-driver/mysql), behind one
// shared database/sql-based API.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/dolthub/driver"
	_ "github.com/go-sql-driver/mysql"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
)

const schema = `
CREATE TABLE IF NOT EXISTS revision_stats (
	revision_id          BIGINT PRIMARY KEY,
	page_id              BIGINT NOT NULL,
	page_title           TEXT NOT NULL,
	page_namespace       INT NOT NULL,
	tokens_added         INT NOT NULL,
	persistent_tokens    INT NOT NULL,
	non_self_persistent_tokens INT NOT NULL,
	sum_log_persisted          DOUBLE NOT NULL,
	sum_log_non_self_persisted DOUBLE NOT NULL,
	sum_log_seconds_visible    DOUBLE NOT NULL,
	censored             BOOL NOT NULL,
	non_self_censored    BOOL NOT NULL
)`

// Store is a handle on the revision_stats table, backed by either sink.
type Store struct {
	db     *sql.DB
	retry  backoff.BackOff
}

// Open connects to dsn and ensures the schema exists. A dsn with no scheme
// or beginning with "dolt://" opens an embedded, in-process Dolt database
// at the given path (github.com/dolthub/driver, driver name "dolt"); a dsn
// beginning with "mysql://" has that prefix stripped and is passed to
// github.com/go-sql-driver/mysql as a standard MySQL DSN, for a remote dolt
// sql-server or MySQL-wire-compatible server.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driverName, driverDSN := dialect(dsn)

	db, err := sql.Open(driverName, driverDSN)
	if err != nil {
		return nil, wrapQueryError("sqlstore.Open", err)
	}

	s := &Store{db: db, retry: newRetry()}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// dialect picks the database/sql driver name and strips any scheme prefix
// dsn carries: no scheme or "dolt://" selects the embedded dolthub/driver,
// "mysql://" selects go-sql-driver/mysql against a remote server.
func dialect(dsn string) (driverName, driverDSN string) {
	if path, ok := strings.CutPrefix(dsn, "dolt://"); ok {
		return "dolt", path
	}
	if path, ok := strings.CutPrefix(dsn, "mysql://"); ok {
		return "mysql", path
	}
	return "dolt", dsn
}

func newRetry() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

func (s *Store) migrate(ctx context.Context) error {
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, schema)
		return wrapExecError("sqlstore.migrate", err)
	})
}

// withRetry retries op against cenkalti/backoff/v4's exponential policy —
// a simplified, in-process analogue of the teacher's file-based
// cross-process circuit breaker, appropriate here since a sqlstore.Store
// is owned by a single process's driver rather than shared across
// independently-launched CLI invocations.
func (s *Store) withRetry(ctx context.Context, op func() error) error {
	return backoff.Retry(op, backoff.WithContext(s.retry, ctx))
}

// Insert upserts one page's StatsRecords into revision_stats.
func (s *Store) Insert(ctx context.Context, recs []*record.StatsRecord) error {
	return s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return wrapTransactionError("sqlstore.Insert", err)
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, `
			REPLACE INTO revision_stats (
				revision_id, page_id, page_title, page_namespace,
				tokens_added, persistent_tokens, non_self_persistent_tokens,
				sum_log_persisted, sum_log_non_self_persisted, sum_log_seconds_visible,
				censored, non_self_censored
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return wrapExecError("sqlstore.Insert", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			p := rec.Persistence
			if _, err := stmt.ExecContext(ctx,
				rec.ID, rec.Page.ID, rec.Page.Title, rec.Page.Namespace,
				p.TokensAdded, p.PersistentTokens, p.NonSelfPersistentTokens,
				p.SumLogPersisted, p.SumLogNonSelfPersisted, p.SumLogSecondsVisible,
				p.Censored, p.NonSelfCensored,
			); err != nil {
				return wrapExecError("sqlstore.Insert", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return wrapTransactionError("sqlstore.Insert", err)
		}
		return nil
	})
}

// Close releases the underlying *sql.DB.
func (s *Store) Close() error {
	return s.db.Close()
}
