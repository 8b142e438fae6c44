package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// FileRecord is a cached extraction keyed by absolute file path.
type FileRecord struct {
	Path      string
	Digest    string
	Payload   []byte
	UpdatedAt time.Time
}

// LoadFile returns the record stored for path, or nil when there is none.
func (db *DB) LoadFile(path string) (*FileRecord, error) {
	var (
		rec     FileRecord
		updated int64
	)
	err := db.conn.QueryRow(
		`SELECT path, digest, payload, updated_at FROM processed_files WHERE path = ?`, path,
	).Scan(&rec.Path, &rec.Digest, &rec.Payload, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cache entry for %s: %w", path, err)
	}
	rec.UpdatedAt = time.Unix(updated, 0)
	return &rec, nil
}

// SaveFile inserts or replaces the record for rec.Path.
func (db *DB) SaveFile(rec *FileRecord) error {
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO processed_files (path, digest, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			digest = excluded.digest,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, rec.Path, rec.Digest, rec.Payload, updated.Unix())
	if err != nil {
		return fmt.Errorf("failed to save cache entry for %s: %w", rec.Path, err)
	}
	return nil
}

// CountFiles returns the number of cached entries.
func (db *DB) CountFiles() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM processed_files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// ClearFiles removes every cached entry.
func (db *DB) ClearFiles() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM processed_files`); err != nil {
			return fmt.Errorf("failed to clear cache entries: %w", err)
		}
		return nil
	})
}
