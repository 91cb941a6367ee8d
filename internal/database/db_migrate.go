package database

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// MigrationType represents the type of database that migrations apply to
type MigrationType string

const (
	MigrationTypeMain MigrationType = "main"
)

// MigrationFile represents a migration file with its metadata
type MigrationFile struct {
	FileName    string
	Version     int
	Type        MigrationType
	Description string
	FilePath    string
}

// Migrate applies pending migrations to the main database
func (db *Database) Migrate() error {
	if err := db.migrateMainDB(); err != nil {
		return fmt.Errorf("failed to migrate main database: %w", err)
	}
	return nil
}

// parseMigrationFileName parses NNNN_type_description.sql
func parseMigrationFileName(fileName string) (*MigrationFile, error) {
	if !strings.HasSuffix(fileName, ".sql") {
		return nil, fmt.Errorf("not a sql file: %s", fileName)
	}
	base := strings.TrimSuffix(fileName, ".sql")

	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid migration filename format: %s (expected format: NNNN_type_description.sql)", fileName)
	}

	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid version number in filename %s: %w", fileName, err)
	}

	var migrationType MigrationType
	switch parts[1] {
	case "main":
		migrationType = MigrationTypeMain
	default:
		return nil, fmt.Errorf("unknown migration type in filename %s: %s", fileName, parts[1])
	}

	return &MigrationFile{
		FileName:    fileName,
		Version:     version,
		Type:        migrationType,
		Description: strings.Join(parts[2:], "_"),
		FilePath:    "migrations/" + fileName,
	}, nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureMigrationsTable(db *sql.DB, dbType string) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		db_type TEXT NOT NULL DEFAULT '',
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table for %s: %w", dbType, err)
	}
	return nil
}

// getAppliedMigrations returns a map of applied migration filenames for a specific database
func getAppliedMigrations(db *sql.DB, dbType string) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.Query(`SELECT filename FROM schema_migrations WHERE db_type = ? OR db_type = ''`, dbType)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations for %s: %w", dbType, err)
	}
	defer rows.Close()

	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("failed to scan migration filename for %s: %w", dbType, err)
		}
		applied[fname] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration rows for %s: %w", dbType, err)
	}

	return applied, nil
}

// applyMigration runs one migration and records it in a single transaction
func applyMigration(db *sql.DB, migration *MigrationFile, dbType string) error {
	content, err := readEmbeddedMigrationContent(migration)
	if err != nil {
		return err
	}

	return retryableTransactionExec(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(content); err != nil {
			return fmt.Errorf("failed to execute migration %s for %s: %w", migration.FileName, dbType, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (filename, db_type) VALUES (?, ?)`, migration.FileName, dbType); err != nil {
			return fmt.Errorf("failed to record migration %s for %s: %w", migration.FileName, dbType, err)
		}
		return nil
	})
}

// migrateMainDB applies migrations to the main database
func (db *Database) migrateMainDB() error {
	if err := ensureMigrationsTable(db.mainDB, "main"); err != nil {
		log.Printf("Failed to ensure migrations table for main database: %v", err)
		return err
	}

	migrations, err := getEmbeddedMigrationFiles()
	if err != nil {
		log.Printf("Failed to get migration files: %v", err)
		return err
	}

	applied, err := getAppliedMigrations(db.mainDB, "main")
	if err != nil {
		log.Printf("Failed to get applied migrations for main database: %v", err)
		return err
	}

	for _, migration := range migrations {
		if migration.Type == MigrationTypeMain && !applied[migration.FileName] {
			if err := applyMigration(db.mainDB, migration, "main"); err != nil {
				log.Printf("Failed to apply migration %s to main database: %v", migration.FileName, err)
				return err
			}
			log.Printf("[DATABASE] applied migration %s", migration.FileName)
		}
	}

	return nil
}
