package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"pks/internal/errors"
	"pks/internal/parser"
	"pks/internal/slogutil"
)

// FingerprintCache is a Cache backed by a Store. Concurrent requests for the
// same path are serialized so a file is extracted at most once per change.
type FingerprintCache struct {
	store     Store
	extractor parser.Extractor
	logger    *slog.Logger

	locks  sync.Map // path -> *sync.Mutex
	hits   atomic.Int64
	misses atomic.Int64
}

// NewFingerprintCache creates a cache over store. A nil logger discards output.
func NewFingerprintCache(store Store, extractor parser.Extractor, logger *slog.Logger) *FingerprintCache {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &FingerprintCache{
		store:     store,
		extractor: extractor,
		logger:    logger,
	}
}

// GetOrExtract implements Cache. A corrupt entry is logged and treated as a
// miss. Store I/O failures are returned as CACHE_FAILURE; read and extraction
// failures as EXTRACTION_FAILED.
func (c *FingerprintCache) GetOrExtract(ctx context.Context, absolutePath string) (*parser.ProcessedFile, error) {
	source, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, errors.New(errors.ExtractionFailed, fmt.Sprintf("failed to read %s", absolutePath), err)
	}
	digest := Fingerprint(source)

	mu := c.lockFor(absolutePath)
	mu.Lock()
	defer mu.Unlock()

	entry, err := c.store.Load(absolutePath)
	switch {
	case err != nil && stderrors.Is(err, errCorruptEntry):
		c.logger.Warn("Cache entry corrupt, re-extracting",
			"path", absolutePath,
			"error", err.Error(),
		)
	case err != nil:
		return nil, errors.New(errors.CacheFailure, fmt.Sprintf("failed to load cache entry for %s", absolutePath), err)
	case entry != nil && entry.Digest == digest && entry.File != nil:
		c.hits.Add(1)
		return entry.File, nil
	}

	c.misses.Add(1)
	pf, err := c.extractor.Extract(ctx, absolutePath, source)
	if err != nil {
		return nil, errors.New(errors.ExtractionFailed, fmt.Sprintf("failed to extract %s", absolutePath), err)
	}

	if err := c.store.Save(absolutePath, &Entry{Digest: digest, File: pf}); err != nil {
		return nil, errors.New(errors.CacheFailure, fmt.Sprintf("failed to save cache entry for %s", absolutePath), err)
	}
	return pf, nil
}

// Clear implements Cache.
func (c *FingerprintCache) Clear() error {
	if err := c.store.Clear(); err != nil {
		return errors.New(errors.CacheFailure, "failed to clear cache", err)
	}
	return nil
}

// Close releases the underlying store.
func (c *FingerprintCache) Close() error {
	return c.store.Close()
}

// Stats returns hit and miss counts.
func (c *FingerprintCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *FingerprintCache) lockFor(path string) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
