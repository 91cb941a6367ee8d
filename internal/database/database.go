package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetDataDir returns the data directory path
func (db *Database) GetDataDir() string {
	return db.dbconfig.DataDir
}

// Stats represents database statistics
type Stats struct {
	Tools      int       `json:"tools"`
	ImportRuns int       `json:"import_runs"`
	LastImport time.Time `json:"last_import,omitempty"`
}

// GetStats returns database statistics
func (db *Database) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	n, err := db.CountTools(ctx)
	if err != nil {
		return nil, err
	}
	stats.Tools = n

	db.MainMutex.RLock()
	defer db.MainMutex.RUnlock()

	if err := retryableQueryRowScanContext(ctx, db.mainDB, `SELECT COUNT(*) FROM import_runs`, nil, &stats.ImportRuns); err != nil {
		return nil, err
	}

	var last sql.NullTime
	err = retryableQueryRowScanContext(ctx, db.mainDB, `SELECT created_at FROM import_runs ORDER BY id DESC LIMIT 1`, nil, &last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if last.Valid {
		stats.LastImport = last.Time
	}
	return stats, nil
}
