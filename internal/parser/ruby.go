//go:build cgo

package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// RubyExtractor extracts constant usages with tree-sitter. It is safe for
// concurrent use; tree-sitter parsers are pooled since a single parser is not.
type RubyExtractor struct {
	pool sync.Pool
}

// NewRubyExtractor creates a new extractor.
func NewRubyExtractor() *RubyExtractor {
	return &RubyExtractor{
		pool: sync.Pool{
			New: func() interface{} {
				p := sitter.NewParser()
				p.SetLanguage(ruby.GetLanguage())
				return p
			},
		},
	}
}

// Extract parses source and collects references and definitions. Syntax
// errors do not fail extraction; tree-sitter recovers and the well-formed
// parts are still walked.
func (e *RubyExtractor) Extract(ctx context.Context, absolutePath string, source []byte) (*ProcessedFile, error) {
	switch KindOf(absolutePath) {
	case KindRuby:
	case KindERB:
		source = ERBToRuby(source)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, absolutePath)
	}

	p := e.pool.Get().(*sitter.Parser)
	defer e.pool.Put(p)

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	w := &walker{source: source}
	w.visit(tree.RootNode(), nil)

	return &ProcessedFile{
		AbsolutePath:         absolutePath,
		UnresolvedReferences: w.refs,
		Definitions:          w.defs,
	}, nil
}

type walker struct {
	source []byte
	refs   []UnresolvedReference
	defs   []Definition
}

func (w *walker) visit(node *sitter.Node, namespace []string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class", "module":
		w.visitNamespace(node, namespace)

	case "assignment", "operator_assignment":
		left := node.ChildByFieldName("left")
		if left != nil && isConstantPath(left.Content(w.source)) {
			w.define(left, namespace)
			w.visit(node.ChildByFieldName("right"), namespace)
			return
		}
		w.visitChildren(node, namespace)

	case "call":
		// obj.Baz names a method, not a constant
		method := node.ChildByFieldName("method")
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if sameNode(child, method) {
				continue
			}
			w.visit(child, namespace)
		}

	case "constant":
		w.reference(node, namespace)

	case "scope_resolution":
		if isConstantPath(node.Content(w.source)) {
			w.reference(node, namespace)
			return
		}
		// foo::Bar: only the receiver can hold constants
		w.visit(node.ChildByFieldName("scope"), namespace)

	default:
		w.visitChildren(node, namespace)
	}
}

func (w *walker) visitNamespace(node *sitter.Node, namespace []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || !isConstantPath(nameNode.Content(w.source)) {
		w.visitChildren(node, namespace)
		return
	}
	w.define(nameNode, namespace)

	// The superclass expression is evaluated in the enclosing scope.
	superclass := node.ChildByFieldName("superclass")
	w.visit(superclass, namespace)

	inner := make([]string, len(namespace), len(namespace)+1)
	copy(inner, namespace)
	inner = append(inner, nameNode.Content(w.source))

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if sameNode(child, nameNode) || sameNode(child, superclass) {
			continue
		}
		w.visit(child, inner)
	}
}

func (w *walker) visitChildren(node *sitter.Node, namespace []string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.visit(node.NamedChild(i), namespace)
	}
}

func (w *walker) reference(node *sitter.Node, namespace []string) {
	ns := make([]string, len(namespace))
	copy(ns, namespace)
	w.refs = append(w.refs, UnresolvedReference{
		Name:          node.Content(w.source),
		NamespacePath: ns,
		Location:      location(node),
	})
}

func (w *walker) define(nameNode *sitter.Node, namespace []string) {
	w.defs = append(w.defs, Definition{
		FullyQualifiedName: QualifyDefinition(nameNode.Content(w.source), namespace),
		Location:           location(nameNode),
	})
}

func location(node *sitter.Node) SourceLocation {
	p := node.StartPoint()
	return SourceLocation{Line: int(p.Row) + 1, Column: int(p.Column)}
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
