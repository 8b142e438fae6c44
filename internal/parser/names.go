package parser

import (
	"regexp"
	"strings"
)

var constantPathPattern = regexp.MustCompile(`^(::)?[A-Z][A-Za-z0-9_]*(::[A-Z][A-Za-z0-9_]*)*$`)

func isConstantPath(s string) bool {
	return constantPathPattern.MatchString(s)
}

// QualifyDefinition returns the fully qualified name ("::A::B") of a constant
// defined as name inside the given namespace nesting.
func QualifyDefinition(name string, namespace []string) string {
	if strings.HasPrefix(name, "::") {
		return name
	}
	parts := append(SplitNamespace(namespace), SplitNamespace([]string{name})...)
	return "::" + JoinNamespace(parts)
}
