//go:build !cgo

package parser

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when extraction is unavailable due to missing CGO.
var ErrNoCGO = errors.New("ruby extraction requires CGO (tree-sitter)")

// RubyExtractor is a stub implementation for non-CGO builds.
type RubyExtractor struct{}

// NewRubyExtractor creates a new extractor.
func NewRubyExtractor() *RubyExtractor {
	return &RubyExtractor{}
}

// Extract always fails without CGO.
func (e *RubyExtractor) Extract(ctx context.Context, absolutePath string, source []byte) (*ProcessedFile, error) {
	return nil, ErrNoCGO
}
