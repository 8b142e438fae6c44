// Package checker turns resolved references into dependency violations and
// compares them with each pack's ledger.
package checker

import (
	"fmt"
	"sort"

	"pks/internal/pack"
	"pks/internal/parser"
	"pks/internal/references"
)

// Violation is a reference that breaks the referencing pack's declared
// dependencies.
type Violation struct {
	Type                    string                `json:"violation_type"`
	ConstantName            string                `json:"constant_name"`
	ReferencingPackName     string                `json:"referencing_pack_name"`
	DefiningPackName        string                `json:"defining_pack_name"`
	RelativeReferencingFile string                `json:"relative_referencing_file"`
	RelativeDefiningFile    string                `json:"relative_defining_file"`
	SourceLocation          parser.SourceLocation `json:"source_location"`
}

// Identifier returns the ledger key of the violation.
func (v Violation) Identifier() pack.ViolationIdentifier {
	return pack.ViolationIdentifier{
		ViolationType:       v.Type,
		File:                v.RelativeReferencingFile,
		ConstantName:        v.ConstantName,
		ReferencingPackName: v.ReferencingPackName,
		DefiningPackName:    v.DefiningPackName,
	}
}

// Message renders the violation for terminal output.
func (v Violation) Message() string {
	return fmt.Sprintf("%s:%d:%d\nDependency violation: `%s` belongs to `%s`, but `%s` does not specify a dependency on `%s`.",
		v.RelativeReferencingFile, v.SourceLocation.Line, v.SourceLocation.Column,
		v.ConstantName, v.DefiningPackName, v.ReferencingPackName, v.DefiningPackName)
}

// Result is the outcome of a check.
type Result struct {
	// Violations holds every detected violation, sorted
	Violations []Violation
	// New holds violations missing from the referencing pack's ledger
	New []Violation
	// StrictFailures holds the New violations of packs enforcing strictly
	StrictFailures []Violation
	// Stale holds ledger entries no longer backed by a detected violation.
	// It is only meaningful when every included file was checked.
	Stale []pack.ViolationIdentifier
}

// Failed reports whether the check should fail.
func (r *Result) Failed() bool {
	return len(r.New) > 0
}

// Check detects dependency violations among refs and compares them with the
// ledgers of registry.
func Check(registry *pack.Registry, refs []references.Reference) *Result {
	result := &Result{}

	for _, ref := range refs {
		v, ok := dependencyViolation(registry, ref)
		if ok {
			result.Violations = append(result.Violations, v)
		}
	}
	sortViolations(result.Violations)

	detected := make(map[pack.ViolationIdentifier]bool, len(result.Violations))
	acknowledged := make(map[string]map[pack.ViolationIdentifier]bool)
	for _, v := range result.Violations {
		id := v.Identifier()
		detected[id] = true

		known, ok := acknowledged[v.ReferencingPackName]
		if !ok {
			known = make(map[pack.ViolationIdentifier]bool)
			for _, k := range registry.ForPack(v.ReferencingPackName).AllViolations() {
				known[k] = true
			}
			acknowledged[v.ReferencingPackName] = known
		}
		if known[id] {
			continue
		}

		result.New = append(result.New, v)
		if registry.ForPack(v.ReferencingPackName).EnforceDependencies == pack.Strict {
			result.StrictFailures = append(result.StrictFailures, v)
		}
	}

	for _, p := range registry.Packs() {
		for _, id := range p.AllViolations() {
			if id.ViolationType == pack.DependencyViolation && !detected[id] {
				result.Stale = append(result.Stale, id)
			}
		}
	}
	sort.Slice(result.Stale, func(i, j int) bool {
		a, b := result.Stale[i], result.Stale[j]
		if a.ReferencingPackName != b.ReferencingPackName {
			return a.ReferencingPackName < b.ReferencingPackName
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.ConstantName < b.ConstantName
	})

	return result
}

func dependencyViolation(registry *pack.Registry, ref references.Reference) (Violation, bool) {
	if ref.DefiningPackName == "" || ref.DefiningPackName == ref.ReferencingPackName {
		return Violation{}, false
	}

	referencing := registry.ForPack(ref.ReferencingPackName)
	if referencing.EnforceDependencies.IsOff() {
		return Violation{}, false
	}
	if referencing.DependsOn(ref.DefiningPackName) || referencing.Ignores(ref.DefiningPackName) {
		return Violation{}, false
	}

	return Violation{
		Type:                    pack.DependencyViolation,
		ConstantName:            ref.ConstantName,
		ReferencingPackName:     ref.ReferencingPackName,
		DefiningPackName:        ref.DefiningPackName,
		RelativeReferencingFile: ref.RelativeReferencingFile,
		RelativeDefiningFile:    ref.RelativeDefiningFile,
		SourceLocation:          ref.SourceLocation,
	}, true
}

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.RelativeReferencingFile != b.RelativeReferencingFile {
			return a.RelativeReferencingFile < b.RelativeReferencingFile
		}
		if a.SourceLocation.Line != b.SourceLocation.Line {
			return a.SourceLocation.Line < b.SourceLocation.Line
		}
		if a.SourceLocation.Column != b.SourceLocation.Column {
			return a.SourceLocation.Column < b.SourceLocation.Column
		}
		return a.ConstantName < b.ConstantName
	})
}
