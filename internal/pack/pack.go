// Package pack models packs: directory-scoped modules with a declared set of
// dependencies, an enforcement level and a ledger of acknowledged violations.
package pack

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RootPackName is the name of the pack whose manifest sits at the project root.
const RootPackName = "."

// ManifestFile is the per-pack manifest file name.
const ManifestFile = "package.yml"

// TodoFile is the per-pack violation ledger file name.
const TodoFile = "package_todo.yml"

// EnforcementSetting controls how dependency violations of a pack are treated.
type EnforcementSetting int

const (
	// Off disables dependency checking for the pack.
	Off EnforcementSetting = iota
	// On flags violations; they may be recorded in the ledger.
	On
	// Strict fails on any violation that is not already in the ledger.
	Strict
)

// ParseEnforcementSetting parses the manifest representation: false, true or strict.
func ParseEnforcementSetting(s string) (EnforcementSetting, error) {
	switch strings.TrimSpace(s) {
	case "", "false":
		return Off, nil
	case "true":
		return On, nil
	case "strict":
		return Strict, nil
	default:
		return Off, fmt.Errorf("invalid enforce_dependencies value %q (expected false, true or strict)", s)
	}
}

func (s EnforcementSetting) String() string {
	switch s {
	case On:
		return "true"
	case Strict:
		return "strict"
	default:
		return "false"
	}
}

// IsOff reports whether checking is disabled.
func (s EnforcementSetting) IsOff() bool {
	return s == Off
}

// UnmarshalYAML accepts both the boolean and the "strict" string forms.
func (s *EnforcementSetting) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: enforce_dependencies must be a scalar", value.Line)
	}
	parsed, err := ParseEnforcementSetting(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// MarshalYAML writes Off and On as booleans and Strict as a string.
func (s EnforcementSetting) MarshalYAML() (interface{}, error) {
	switch s {
	case On:
		return true, nil
	case Strict:
		return "strict", nil
	default:
		return false, nil
	}
}

// Pack is a named module rooted at the directory holding its manifest.
// Identity is the name alone.
type Pack struct {
	// Name is the root-relative directory with forward slashes, or "." for the root pack
	Name string

	// Manifest is the absolute path to package.yml
	Manifest string

	// RelativePath is the root-relative pack directory
	RelativePath string

	Dependencies        StringSet
	IgnoredDependencies StringSet
	EnforceDependencies EnforcementSetting

	// PackageTodo is the ledger of acknowledged violations where this pack is the referencing pack
	PackageTodo PackageTodo
}

// Root returns the absolute directory of the pack.
func (p *Pack) Root() string {
	return filepath.Dir(p.Manifest)
}

// TodoPath returns the absolute path of the pack's package_todo.yml.
func (p *Pack) TodoPath() string {
	return filepath.Join(p.Root(), TodoFile)
}

// DependsOn reports whether the pack declares a dependency on name.
func (p *Pack) DependsOn(name string) bool {
	return p.Dependencies.Has(name)
}

// Ignores reports whether violations against name are never flagged.
func (p *Pack) Ignores(name string) bool {
	return p.IgnoredDependencies.Has(name)
}

// Equal compares packs by name.
func (p *Pack) Equal(other *Pack) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name
}

// StringSet is an unordered set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a set from values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set is empty.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
