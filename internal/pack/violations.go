package pack

import "sort"

// Violation types recorded in package_todo.yml.
const (
	DependencyViolation = "dependency"
	PrivacyViolation    = "privacy"
)

// ViolationIdentifier is the flattened comparison key for one acknowledged
// (or freshly detected) violation.
type ViolationIdentifier struct {
	ViolationType       string `json:"violation_type"`
	File                string `json:"file"`
	ConstantName        string `json:"constant_name"`
	ReferencingPackName string `json:"referencing_pack_name"`
	DefiningPackName    string `json:"defining_pack_name"`
}

// AllViolations expands the pack's ledger into one identifier per
// (violation type, file) pair of every constant. The output is ordered by
// defining pack, then constant, then type, then file.
func (p *Pack) AllViolations() []ViolationIdentifier {
	var violations []ViolationIdentifier
	for _, definingPack := range sortedKeys(p.PackageTodo) {
		groups := p.PackageTodo[definingPack]
		constants := make([]string, 0, len(groups))
		for constant := range groups {
			constants = append(constants, constant)
		}
		sort.Strings(constants)

		for _, constant := range constants {
			group := groups[constant]
			for _, violationType := range group.ViolationTypes {
				for _, file := range group.Files {
					violations = append(violations, ViolationIdentifier{
						ViolationType:       violationType,
						File:                file,
						ConstantName:        constant,
						ReferencingPackName: p.Name,
						DefiningPackName:    definingPack,
					})
				}
			}
		}
	}
	return violations
}

func sortedKeys(todo PackageTodo) []string {
	keys := make([]string, 0, len(todo))
	for k := range todo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
