package database

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"strings"
	"time"
)

const (
	maxRetries = 1000
	baseDelay  = 10 * time.Millisecond
	maxDelay   = 25 * time.Millisecond
)

// isRetryableError checks if the error is a retryable SQLite error
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "busy") ||
		strings.Contains(errStr, "locked")
}

// backoff sleeps before the next attempt. Returns false when ctx is done.
func backoff(ctx context.Context, attempt int) bool {
	// Exponential backoff with jitter
	delay := time.Duration(attempt+1) * baseDelay
	if delay > maxDelay {
		delay = maxDelay
	}
	// Add random jitter (up to 50% of delay)
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))

	t := time.NewTimer(delay + jitter)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryableExecContext executes a SQL statement with retry logic for lock conflicts
func retryableExecContext(ctx context.Context, db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	var result sql.Result
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err = db.ExecContext(ctx, query, args...)
		if !isRetryableError(err) {
			return result, err
		}
		log.Printf("[WARN] SQLite retry attempt %d/%d for query (first 50 chars): %s... Error: %v",
			attempt+1, maxRetries, truncateString(query, 50), err)
		if !backoff(ctx, attempt) {
			return result, ctx.Err()
		}
	}

	return result, err
}

// retryableQueryContext executes a query that returns multiple rows with retry logic
func retryableQueryContext(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*sql.Rows, error) {
	var rows *sql.Rows
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		rows, err = db.QueryContext(ctx, query, args...)
		if !isRetryableError(err) {
			return rows, err
		}
		log.Printf("SQLite retry attempt %d/%d for query (first 50 chars): %s... Error: %v",
			attempt+1, maxRetries, truncateString(query, 50), err)
		if !backoff(ctx, attempt) {
			return nil, ctx.Err()
		}
	}

	return rows, err
}

// retryableQueryRowScanContext executes a QueryRow and Scan with retry logic
func retryableQueryRowScanContext(ctx context.Context, db *sql.DB, query string, args []interface{}, dest ...interface{}) error {
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err = db.QueryRowContext(ctx, query, args...).Scan(dest...)
		if !isRetryableError(err) {
			return err
		}
		log.Printf("SQLite retry attempt %d/%d for QueryRow scan (first 50 chars): %s... Error: %v",
			attempt+1, maxRetries, truncateString(query, 50), err)
		if !backoff(ctx, attempt) {
			return ctx.Err()
		}
	}

	return err
}

// retryableTransactionExec executes a transaction with retry logic
func retryableTransactionExec(db *sql.DB, txFunc func(*sql.Tx) error) error {
	return retryableTransactionExecContext(context.Background(), db, txFunc)
}

// retryableTransactionExecContext runs txFunc in a transaction, retrying the
// whole transaction when sqlite reports a lock conflict
func retryableTransactionExecContext(ctx context.Context, db *sql.DB, txFunc func(*sql.Tx) error) error {
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		var tx *sql.Tx
		tx, err = db.BeginTx(ctx, nil)
		if err == nil {
			err = txFunc(tx)
			if err != nil {
				tx.Rollback()
			} else {
				err = tx.Commit()
			}
		}

		if !isRetryableError(err) {
			return err
		}
		log.Printf("SQLite retry attempt %d/%d for transaction: %v", attempt+1, maxRetries, err)
		if !backoff(ctx, attempt) {
			return ctx.Err()
		}
	}

	return err
}

// Exported wrapper functions for use by other packages

// RetryableExec executes a SQL statement with retry logic for lock conflicts
func RetryableExec(ctx context.Context, db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	return retryableExecContext(ctx, db, query, args...)
}

// RetryableQuery executes a SQL query with retry logic for lock conflicts
func RetryableQuery(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*sql.Rows, error) {
	return retryableQueryContext(ctx, db, query, args...)
}

// RetryableQueryRowScan executes a SQL query and scans the result with retry logic
func RetryableQueryRowScan(ctx context.Context, db *sql.DB, query string, args []interface{}, dest ...interface{}) error {
	return retryableQueryRowScanContext(ctx, db, query, args, dest...)
}

// RetryableTransactionExec executes a transaction with retry logic for lock conflicts
func RetryableTransactionExec(ctx context.Context, db *sql.DB, txFunc func(*sql.Tx) error) error {
	return retryableTransactionExecContext(ctx, db, txFunc)
}
