// Package parser extracts constant usages and definitions from Ruby source.
package parser

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is returned for files the extractor cannot parse.
var ErrUnsupportedFile = errors.New("unsupported file type")

// SourceLocation is a 1-based line and 0-based column.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// UnresolvedReference is a constant as written at a usage site, together with
// the namespaces lexically enclosing it (outermost first).
type UnresolvedReference struct {
	Name          string         `json:"name"`
	NamespacePath []string       `json:"namespace_path"`
	Location      SourceLocation `json:"location"`
}

// Definition is a class, module or constant assignment observed in source.
type Definition struct {
	FullyQualifiedName string         `json:"fully_qualified_name"`
	Location           SourceLocation `json:"location"`
}

// ProcessedFile is the extraction result of one file. It is immutable once
// produced.
type ProcessedFile struct {
	AbsolutePath         string                `json:"absolute_path"`
	UnresolvedReferences []UnresolvedReference `json:"unresolved_references"`
	Definitions          []Definition          `json:"definitions,omitempty"`
}

// Extractor turns source into a ProcessedFile.
type Extractor interface {
	Extract(ctx context.Context, absolutePath string, source []byte) (*ProcessedFile, error)
}

// Kind classifies files by extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindRuby
	KindERB
)

// KindOf returns the kind of a file from its name.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rb", ".rake", ".ru", ".gemspec":
		return KindRuby
	case ".erb":
		return KindERB
	}
	switch filepath.Base(path) {
	case "Gemfile", "Rakefile":
		return KindRuby
	}
	return KindUnknown
}

// JoinNamespace joins namespace segments into a constant path without a
// leading "::".
func JoinNamespace(segments []string) string {
	return strings.Join(segments, "::")
}

// SplitNamespace flattens entries such as "Foo::Bar" into ["Foo", "Bar"]. An
// absolute entry ("::Foo") restarts the path.
func SplitNamespace(namespacePath []string) []string {
	var out []string
	for _, entry := range namespacePath {
		if strings.HasPrefix(entry, "::") {
			out = out[:0]
		}
		for _, part := range strings.Split(strings.TrimPrefix(entry, "::"), "::") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
