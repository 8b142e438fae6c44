package pack

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	pkserrors "pks/internal/errors"
)

// ViolationGroup is the set of acknowledged violation types of one constant
// and the referencing files they occur in.
type ViolationGroup struct {
	ViolationTypes []string `yaml:"violations"`
	Files          []string `yaml:"files"`
}

// PackageTodo maps defining pack name -> constant name -> violation group.
type PackageTodo map[string]map[string]ViolationGroup

const todoHeader = `# This file contains a list of dependencies that are not part of the long term plan for the
# '%s' package.
# We should generally work to reduce this list over time.
#
# You can regenerate this file using the following command:
#
# pks update
`

// ParsePackageTodo parses package_todo.yml contents.
func ParsePackageTodo(data []byte) (PackageTodo, error) {
	todo := PackageTodo{}
	if err := yaml.Unmarshal(data, &todo); err != nil {
		return nil, err
	}
	if todo == nil {
		todo = PackageTodo{}
	}
	return todo, nil
}

// ReadPackageTodo reads a ledger file. A missing file is an empty ledger.
func ReadPackageTodo(path string) (PackageTodo, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return PackageTodo{}, nil
	}
	if err != nil {
		return nil, pkserrors.New(pkserrors.ManifestInvalid, "failed to read "+path, err)
	}
	todo, err := ParsePackageTodo(data)
	if err != nil {
		return nil, pkserrors.New(pkserrors.ManifestInvalid, "failed to parse "+path, err)
	}
	return todo, nil
}

// Marshal renders the ledger with the standard header. Map keys come out
// sorted; violation types and files are sorted and deduplicated.
func (t PackageTodo) Marshal(packName string) ([]byte, error) {
	normalized := make(map[string]map[string]ViolationGroup, len(t))
	for definingPack, constants := range t {
		if len(constants) == 0 {
			continue
		}
		groups := make(map[string]ViolationGroup, len(constants))
		for constant, group := range constants {
			groups[constant] = ViolationGroup{
				ViolationTypes: sortedUnique(group.ViolationTypes),
				Files:          sortedUnique(group.Files),
			}
		}
		normalized[definingPack] = groups
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, todoHeader, packName)
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePackageTodo writes the ledger for packName to path. An empty ledger
// removes the file.
func WritePackageTodo(path string, packName string, todo PackageTodo) error {
	if todo.IsEmpty() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	data, err := todo.Marshal(packName)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// IsEmpty reports whether the ledger records no violations.
func (t PackageTodo) IsEmpty() bool {
	for _, constants := range t {
		if len(constants) > 0 {
			return false
		}
	}
	return true
}

// Add records one violation.
func (t PackageTodo) Add(definingPack, constant, violationType, file string) {
	constants, ok := t[definingPack]
	if !ok {
		constants = map[string]ViolationGroup{}
		t[definingPack] = constants
	}
	group := constants[constant]
	group.ViolationTypes = appendUnique(group.ViolationTypes, violationType)
	group.Files = appendUnique(group.Files, file)
	constants[constant] = group
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

func sortedUnique(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
