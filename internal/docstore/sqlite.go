// Package docstore is the per-publication document store holding usage data.
//
// Documents are kept verbatim in SQLite and decoded on lookup; large
// sub-fields such as full text are stripped before use.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matsen/bibstats/internal/record"
	"github.com/segmentio/encoding/json"
	_ "modernc.org/sqlite"
)

// strippedFields are removed from a document before it is decoded.
var strippedFields = []string{"full"}

// DB wraps a SQLite database holding usage documents.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite document store at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Lookups run from the retrieval pool; a single connection serializes them.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS usage (
			bibcode TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		);
	`)
	return err
}

// ImportJSONL loads every document of a JSONL file, replacing existing
// documents with the same bibcode. Returns the number of documents stored.
func (d *DB) ImportJSONL(ctx context.Context, path string) (int, error) {
	docs, err := ReadJSONL(path)
	if err != nil {
		return 0, err
	}
	if err := d.Put(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Put stores documents in a single transaction.
func (d *DB) Put(ctx context.Context, docs []RawDoc) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO usage (bibcode, doc) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing usage insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if _, err := stmt.ExecContext(ctx, doc.Bibcode, string(doc.Data)); err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.Bibcode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Usage returns the usage record for bibcode. The boolean is false when the
// store holds no document for it.
func (d *DB) Usage(ctx context.Context, bibcode string) (record.Usage, bool, error) {
	var raw string
	err := d.db.QueryRowContext(ctx, `SELECT doc FROM usage WHERE bibcode = ?`, bibcode).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Usage{}, false, nil
	}
	if err != nil {
		return record.Usage{}, false, fmt.Errorf("querying document %s: %w", bibcode, err)
	}

	usage, err := decodeUsage([]byte(raw))
	if err != nil {
		return record.Usage{}, false, fmt.Errorf("decoding document %s: %w", bibcode, err)
	}
	usage.Bibcode = bibcode
	return usage, true, nil
}

// decodeUsage strips large sub-fields and decodes the usage arrays.
func decodeUsage(data []byte) (record.Usage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return record.Usage{}, err
	}
	for _, f := range strippedFields {
		delete(doc, f)
	}

	var usage record.Usage
	if raw, ok := doc["reads"]; ok {
		if err := json.Unmarshal(raw, &usage.Reads); err != nil {
			return record.Usage{}, fmt.Errorf("reads: %w", err)
		}
	}
	if raw, ok := doc["downloads"]; ok {
		if err := json.Unmarshal(raw, &usage.Downloads); err != nil {
			return record.Usage{}, fmt.Errorf("downloads: %w", err)
		}
	}
	return usage, nil
}
