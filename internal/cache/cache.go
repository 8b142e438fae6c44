// Package cache memoizes file extraction keyed by a content fingerprint.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"pks/internal/errors"
	"pks/internal/parser"
	"pks/internal/slogutil"
)

// formatVersion is mixed into every fingerprint so entries written by an
// incompatible extractor are never reused.
const formatVersion = "pks-processed-file-v1"

// Cache returns the extraction result for a file, reusing a stored result when
// the file content is unchanged.
type Cache interface {
	GetOrExtract(ctx context.Context, absolutePath string) (*parser.ProcessedFile, error)
	Clear() error
	Close() error
}

// Entry is what a Store persists for one file.
type Entry struct {
	Digest string                `json:"digest"`
	File   *parser.ProcessedFile `json:"file"`
}

// Store persists entries by absolute path. Implementations must be safe for
// concurrent use across distinct paths.
type Store interface {
	Load(absolutePath string) (*Entry, error)
	Save(absolutePath string, entry *Entry) error
	Clear() error
	Close() error
}

// Stats counts cache outcomes since construction.
type Stats struct {
	Hits   int64
	Misses int64
}

// Fingerprint returns the content digest used to validate entries.
func Fingerprint(source []byte) string {
	h := sha256.New()
	h.Write([]byte(formatVersion))
	h.Write([]byte{0})
	h.Write(source)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Backends accepted by Open.
const (
	BackendDisk   = "disk"
	BackendSQLite = "sqlite"
)

// Options selects the cache implementation.
type Options struct {
	Enabled   bool
	Backend   string
	Directory string
}

// Open returns a Noop cache when caching is disabled and a FingerprintCache
// over the configured backend otherwise.
func Open(opts Options, extractor parser.Extractor, logger *slog.Logger) (Cache, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if !opts.Enabled {
		return NewNoop(extractor), nil
	}

	var (
		store Store
		err   error
	)
	switch opts.Backend {
	case BackendDisk, "":
		store, err = NewDiskStore(opts.Directory)
	case BackendSQLite:
		store, err = NewSQLiteStore(opts.Directory, logger)
	default:
		return nil, errors.Newf(errors.ConfigInvalid, "unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, errors.New(errors.CacheFailure, "failed to open cache", err)
	}
	return NewFingerprintCache(store, extractor, logger), nil
}
