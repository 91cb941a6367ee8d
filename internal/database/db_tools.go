package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-while/go-toolsite/internal/models"
)

// ErrInvalidTool is returned when an entry lacks an id or name
var ErrInvalidTool = errors.New("tool entry needs id and name")

const toolColumns = `id, name, description, category, tags, url, image_url, pricing, featured, meta`

func scanTool(scan func(dest ...interface{}) error) (models.ToolEntry, error) {
	var (
		t          models.ToolEntry
		tags, meta string
	)
	err := scan(&t.ID, &t.Name, &t.Description, &t.Category, &tags, &t.URL, &t.ImageURL, &t.Pricing, &t.Featured, &meta)
	if err != nil {
		return t, err
	}
	t.Tags = splitTags(tags)
	t.Meta = decodeMeta(meta)
	return t, nil
}

// ListTools returns all stored tools in import order
func (db *Database) ListTools(ctx context.Context) ([]models.ToolEntry, error) {
	db.MainMutex.RLock()
	defer db.MainMutex.RUnlock()

	query := `SELECT ` + toolColumns + ` FROM tools ORDER BY position ASC, id ASC`

	rows, err := retryableQueryContext(ctx, db.mainDB, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []models.ToolEntry
	for rows.Next() {
		t, err := scanTool(rows.Scan)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}

	return tools, rows.Err()
}

// GetTool returns one tool by id, or sql.ErrNoRows
func (db *Database) GetTool(ctx context.Context, id string) (*models.ToolEntry, error) {
	db.MainMutex.RLock()
	defer db.MainMutex.RUnlock()

	var t models.ToolEntry
	var tags, meta string
	err := retryableQueryRowScanContext(ctx, db.mainDB, `SELECT `+toolColumns+` FROM tools WHERE id = ?`, []interface{}{id},
		&t.ID, &t.Name, &t.Description, &t.Category, &tags, &t.URL, &t.ImageURL, &t.Pricing, &t.Featured, &meta)
	if err != nil {
		return nil, err
	}
	t.Tags = splitTags(tags)
	t.Meta = decodeMeta(meta)
	return &t, nil
}

// CountTools returns the number of stored tools
func (db *Database) CountTools(ctx context.Context) (int, error) {
	db.MainMutex.RLock()
	defer db.MainMutex.RUnlock()

	var n int
	err := retryableQueryRowScanContext(ctx, db.mainDB, `SELECT COUNT(*) FROM tools`, nil, &n)
	return n, err
}

// UpsertTools inserts or replaces tools in one transaction.
// Entries are appended after the current last position so import order is kept.
// Entries without id or name are skipped and counted.
func (db *Database) UpsertTools(ctx context.Context, tools []models.ToolEntry) (imported, skipped int, err error) {
	db.MainMutex.Lock()
	defer db.MainMutex.Unlock()

	err = retryableTransactionExecContext(ctx, db.mainDB, func(tx *sql.Tx) error {
		imported, skipped = 0, 0

		var next int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM tools`).Scan(&next); err != nil {
			return fmt.Errorf("failed to read tool position: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tools (`+toolColumns+`, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				category = excluded.category,
				tags = excluded.tags,
				url = excluded.url,
				image_url = excluded.image_url,
				pricing = excluded.pricing,
				featured = excluded.featured,
				meta = excluded.meta,
				updated_at = CURRENT_TIMESTAMP`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tools {
			if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
				skipped++
				continue
			}
			meta, err := encodeMeta(t.Meta)
			if err != nil {
				return fmt.Errorf("tool %s: %w", t.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, t.ID, t.Name, t.Description, t.Category, joinTags(t.Tags),
				t.URL, t.ImageURL, t.Pricing, t.Featured, meta, next); err != nil {
				return fmt.Errorf("tool %s: %w", t.ID, err)
			}
			next++
			imported++
		}
		return nil
	})
	return imported, skipped, err
}

// DeleteTool removes a tool. Returns sql.ErrNoRows if it did not exist.
func (db *Database) DeleteTool(ctx context.Context, id string) error {
	db.MainMutex.Lock()
	defer db.MainMutex.Unlock()

	res, err := retryableExecContext(ctx, db.mainDB, `DELETE FROM tools WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordImportRun stores the outcome of an import
func (db *Database) RecordImportRun(ctx context.Context, sourceFile string, imported, skipped int) (int64, error) {
	db.MainMutex.Lock()
	defer db.MainMutex.Unlock()

	res, err := retryableExecContext(ctx, db.mainDB,
		`INSERT INTO import_runs (source_file, imported, skipped) VALUES (?, ?, ?)`,
		sourceFile, imported, skipped)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetImportRuns returns the most recent import runs, newest first
func (db *Database) GetImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	db.MainMutex.RLock()
	defer db.MainMutex.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := retryableQueryContext(ctx, db.mainDB,
		`SELECT id, source_file, imported, skipped, created_at FROM import_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		var r models.ImportRun
		if err := rows.Scan(&r.ID, &r.SourceFile, &r.Imported, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
