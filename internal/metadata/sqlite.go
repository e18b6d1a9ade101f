package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS component_metadata (
	identifier TEXT PRIMARY KEY,
	record TEXT NOT NULL,
	imported_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// SQLiteSource reads records from the component_metadata table of a SQLite
// database, typically one produced by ImportSQLite.
type SQLiteSource struct {
	Path string
}

func (s SQLiteSource) Name() string { return "sqlite:" + s.Path }

func (s SQLiteSource) Records(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// sql.Open would create an empty database for a missing path.
	if _, err := os.Stat(s.Path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, "SELECT identifier, record FROM component_metadata")
	if err != nil {
		return nil, fmt.Errorf("query component_metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, record string
		if err := rows.Scan(&id, &record); err != nil {
			return nil, fmt.Errorf("scan component_metadata: %w", err)
		}
		out[id] = json.RawMessage(record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate component_metadata: %w", err)
	}
	return out, nil
}

// ImportSQLite writes every record of store into the database at dbPath,
// replacing rows with the same identifier. It returns the number of rows written.
func ImportSQLite(ctx context.Context, dbPath string, store *Store) (int, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open sqlite database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return 0, fmt.Errorf("initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO component_metadata (identifier, record) VALUES (?, ?) "+
			"ON CONFLICT(identifier) DO UPDATE SET record = excluded.record, imported_at = unixepoch()")
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	n := 0
	for _, id := range store.Identifiers() {
		rec, _ := store.Get(id)
		if _, err := stmt.ExecContext(ctx, string(id), string(rec.raw)); err != nil {
			return n, fmt.Errorf("insert %s: %w", id, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}
