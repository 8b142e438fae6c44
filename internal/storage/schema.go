package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// initializeSchema creates missing tables. A database written by a different
// schema version is treated as a stale cache and its entries are dropped.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}

		if _, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS processed_files (
				path TEXT PRIMARY KEY,
				digest TEXT NOT NULL,
				payload BLOB NOT NULL,
				updated_at INTEGER NOT NULL
			)
		`); err != nil {
			return fmt.Errorf("failed to create processed_files table: %w", err)
		}

		version, err := schemaVersion(tx)
		if err != nil {
			return err
		}
		if version == currentSchemaVersion {
			return nil
		}

		if version != 0 {
			db.logger.Info("Cache schema changed, dropping entries",
				"from_version", version,
				"to_version", currentSchemaVersion,
			)
			if _, err := tx.Exec(`DELETE FROM processed_files`); err != nil {
				return fmt.Errorf("failed to clear processed_files: %w", err)
			}
		}

		if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
			return fmt.Errorf("failed to reset schema version: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		return nil
	})
}

func schemaVersion(tx *sql.Tx) (int, error) {
	var version int
	err := tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
