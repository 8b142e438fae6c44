// Package resolver maps constant usages to fully qualified names and the files
// that define them.
package resolver

import (
	"strings"

	"pks/internal/parser"
)

// Resolution is one candidate definition for a constant usage.
type Resolution struct {
	// FullyQualifiedName always starts with "::"
	FullyQualifiedName string

	// DefiningFile is the absolute path of the defining file
	DefiningFile string
}

// ConstantResolver resolves a constant as written at a usage site. An empty
// result means the constant is unresolvable, which is not an error.
type ConstantResolver interface {
	Resolve(name string, namespacePath []string) []Resolution
}

// lookup searches for name from the innermost enclosing namespace outward to
// the global namespace and stops at the first level where find yields files.
// When no level matches, the last segment is dropped and the search repeats,
// so Foo::Bar::SOME_CONSTANT resolves to the file defining Foo::Bar while
// keeping its full name.
func lookup(name string, namespacePath []string, find func(fqn string) []string) []Resolution {
	constName := strings.TrimPrefix(name, "::")
	if constName == "" {
		return nil
	}

	var scope []string
	if !strings.HasPrefix(name, "::") {
		scope = parser.SplitNamespace(namespacePath)
	}

	original := constName
	for {
		for depth := len(scope); depth >= 0; depth-- {
			prefix := scope[:depth]
			files := find(qualify(prefix, constName))
			if len(files) == 0 {
				continue
			}
			fqn := qualify(prefix, original)
			out := make([]Resolution, len(files))
			for i, f := range files {
				out[i] = Resolution{FullyQualifiedName: fqn, DefiningFile: f}
			}
			return out
		}

		idx := strings.LastIndex(constName, "::")
		if idx < 0 {
			return nil
		}
		constName = constName[:idx]
	}
}

func qualify(prefix []string, name string) string {
	if len(prefix) == 0 {
		return "::" + name
	}
	return "::" + strings.Join(prefix, "::") + "::" + name
}
