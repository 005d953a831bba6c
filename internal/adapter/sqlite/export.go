// Package sqlite exports the warning-code catalog into a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS warning_codes (
	category TEXT NOT NULL,
	position INTEGER NOT NULL,
	code TEXT NOT NULL,
	event TEXT NOT NULL,
	level INTEGER,
	remark TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (category, position)
)`

// Open opens (or creates) the database at dsn.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	return db, nil
}

// Export replaces the contents of the warning_codes table with the catalog.
// Null levels are stored as SQL NULL.
func Export(ctx context.Context, db *sql.DB, cat *domain.Catalog) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM warning_codes`); err != nil {
		return fmt.Errorf("clear warning_codes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO warning_codes (category, position, code, event, level, remark) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range domain.Categories() {
		for i, e := range cat.Entries(c) {
			var level sql.NullInt64
			if e.Level.Valid() {
				level = sql.NullInt64{Int64: int64(e.Level), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, string(c), i, e.Code, e.Event, level, e.Remark); err != nil {
				return fmt.Errorf("insert %s/%s: %w", c, e.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
