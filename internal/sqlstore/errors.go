package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors for the SQL sink, adapted from the teacher's dolt storage
// layer so a caller can errors.Is against the failure category regardless
// of which underlying driver (embedded dolthub/driver or remote
// go-sql-driver/mysql) produced it.
var (
	ErrNotFound    = errors.New("not found")
	ErrTransaction = errors.New("transaction error")
	ErrQuery       = errors.New("query error")
	ErrScan        = errors.New("scan error")
	ErrExec        = errors.New("exec error")
)

func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrQuery, err)
}

func wrapExecError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrExec, err)
}

func wrapTransactionError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransaction, err)
}

func wrapScanError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrScan, err)
}
