package cache

import (
	"context"
	"fmt"
	"os"

	"pks/internal/errors"
	"pks/internal/parser"
)

// Noop extracts every file on every call.
type Noop struct {
	extractor parser.Extractor
}

// NewNoop returns a Cache that never stores anything.
func NewNoop(extractor parser.Extractor) *Noop {
	return &Noop{extractor: extractor}
}

// GetOrExtract implements Cache.
func (n *Noop) GetOrExtract(ctx context.Context, absolutePath string) (*parser.ProcessedFile, error) {
	source, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, errors.New(errors.ExtractionFailed, fmt.Sprintf("failed to read %s", absolutePath), err)
	}
	pf, err := n.extractor.Extract(ctx, absolutePath, source)
	if err != nil {
		return nil, errors.New(errors.ExtractionFailed, fmt.Sprintf("failed to extract %s", absolutePath), err)
	}
	return pf, nil
}

// Clear implements Cache.
func (n *Noop) Clear() error { return nil }

// Close is a no-op.
func (n *Noop) Close() error { return nil }
