package cache

import (
	"log/slog"

	"pks/internal/storage"
)

// SQLiteStore keeps entries in a single SQLite database.
type SQLiteStore struct {
	db *storage.DB
}

// NewSQLiteStore opens the cache database in dir.
func NewSQLiteStore(dir string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := storage.Open(dir, logger)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(absolutePath string) (*Entry, error) {
	rec, err := s.db.LoadFile(absolutePath)
	if err != nil || rec == nil {
		return nil, err
	}
	entry, err := decodeEntry(rec.Payload)
	if err != nil {
		return nil, err
	}
	entry.Digest = rec.Digest
	return entry, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(absolutePath string, entry *Entry) error {
	payload, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return s.db.SaveFile(&storage.FileRecord{
		Path:    absolutePath,
		Digest:  entry.Digest,
		Payload: payload,
	})
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	return s.db.ClearFiles()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
