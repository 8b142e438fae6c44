package pack

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	pkserrors "pks/internal/errors"
	"pks/internal/paths"
)

// Manifest is the on-disk shape of package.yml. Unknown keys are ignored.
type Manifest struct {
	Dependencies        []string           `yaml:"dependencies"`
	IgnoredDependencies []string           `yaml:"ignored_dependencies"`
	EnforceDependencies EnforcementSetting `yaml:"enforce_dependencies"`
}

// ParseManifest parses package.yml contents. Omitted fields take their
// defaults: no dependencies and enforcement Off.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads the manifest at manifestPath and the ledger next to it. The pack
// name is the manifest directory relative to root.
func Load(root string, manifestPath string) (*Pack, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, pkserrors.New(pkserrors.ManifestInvalid, "failed to read "+manifestPath, err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, pkserrors.New(pkserrors.ManifestInvalid, "failed to parse "+manifestPath, err)
	}

	rel, err := paths.RelativePath(root, filepath.Dir(manifestPath))
	if err != nil {
		return nil, fmt.Errorf("failed to compute pack name for %s: %w", manifestPath, err)
	}

	p := &Pack{
		Name:                rel,
		Manifest:            manifestPath,
		RelativePath:        rel,
		Dependencies:        NewStringSet(manifest.Dependencies...),
		IgnoredDependencies: NewStringSet(manifest.IgnoredDependencies...),
		EnforceDependencies: manifest.EnforceDependencies,
	}

	todo, err := ReadPackageTodo(p.TodoPath())
	if err != nil {
		return nil, err
	}
	p.PackageTodo = todo

	return p, nil
}
