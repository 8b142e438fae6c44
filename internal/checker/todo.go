package checker

import (
	"fmt"

	"pks/internal/pack"
)

// BuildPackageTodos groups violations into one ledger per referencing pack.
// Packs without violations are absent from the result.
func BuildPackageTodos(violations []Violation) map[string]pack.PackageTodo {
	todos := make(map[string]pack.PackageTodo)
	for _, v := range violations {
		todo, ok := todos[v.ReferencingPackName]
		if !ok {
			todo = pack.PackageTodo{}
			todos[v.ReferencingPackName] = todo
		}
		todo.Add(v.DefiningPackName, v.ConstantName, v.Type, v.RelativeReferencingFile)
	}
	return todos
}

// Recordable returns the violations that may be written to ledgers. Strict
// packs never gain entries, so their new violations are left out.
func (r *Result) Recordable() []Violation {
	if len(r.StrictFailures) == 0 {
		return r.Violations
	}
	rejected := make(map[pack.ViolationIdentifier]bool, len(r.StrictFailures))
	for _, v := range r.StrictFailures {
		rejected[v.Identifier()] = true
	}
	out := make([]Violation, 0, len(r.Violations))
	for _, v := range r.Violations {
		if !rejected[v.Identifier()] {
			out = append(out, v)
		}
	}
	return out
}

// WritePackageTodos rewrites the ledger of every pack from the recordable
// violations of result. Packs left without violations lose their ledger
// file. It returns the number of ledgers written.
func WritePackageTodos(registry *pack.Registry, result *Result) (int, error) {
	todos := BuildPackageTodos(result.Recordable())
	written := 0
	for _, p := range registry.Packs() {
		todo := todos[p.Name]
		if todo == nil {
			todo = pack.PackageTodo{}
		}
		if err := pack.WritePackageTodo(p.TodoPath(), p.Name, todo); err != nil {
			return written, fmt.Errorf("failed to write ledger for %s: %w", p.Name, err)
		}
		if !todo.IsEmpty() {
			written++
		}
	}
	return written, nil
}
