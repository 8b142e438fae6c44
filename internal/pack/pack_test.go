package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	pkserrors "pks/internal/errors"
)

const fooTodo = `
# This file contains a list of dependencies that are not part of the long term plan for the
# 'packs/foo' package.
packs/bar:
  "::Bar":
    violations:
    - dependency
    files:
    - packs/foo/app/services/foo.rb
  "::Baz":
    violations:
    - dependency
    - privacy
    files:
    - packs/foo/app/services/foo.rb
`

func TestParsePackageTodo(t *testing.T) {
	todo, err := ParsePackageTodo([]byte(fooTodo))
	require.NoError(t, err)

	expected := PackageTodo{
		"packs/bar": {
			"::Bar": {
				ViolationTypes: []string{"dependency"},
				Files:          []string{"packs/foo/app/services/foo.rb"},
			},
			"::Baz": {
				ViolationTypes: []string{"dependency", "privacy"},
				Files:          []string{"packs/foo/app/services/foo.rb"},
			},
		},
	}
	assert.Equal(t, expected, todo)
}

func TestPackageTodo_RoundTrip(t *testing.T) {
	todo, err := ParsePackageTodo([]byte(fooTodo))
	require.NoError(t, err)

	data, err := todo.Marshal("packs/foo")
	require.NoError(t, err)
	assert.Contains(t, string(data), "'packs/foo' package")

	again, err := ParsePackageTodo(data)
	require.NoError(t, err)
	assert.Equal(t, todo, again)
}

func TestWritePackageTodo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, TodoFile)

	todo := PackageTodo{}
	todo.Add("packs/bar", "::Bar", DependencyViolation, "packs/foo/app/services/foo.rb")
	require.NoError(t, WritePackageTodo(path, "packs/foo", todo))

	read, err := ReadPackageTodo(path)
	require.NoError(t, err)
	assert.Equal(t, todo, read)

	// An empty ledger removes the file.
	require.NoError(t, WritePackageTodo(path, "packs/foo", PackageTodo{}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadPackageTodo_Missing(t *testing.T) {
	todo, err := ReadPackageTodo(filepath.Join(t.TempDir(), TodoFile))
	require.NoError(t, err)
	assert.True(t, todo.IsEmpty())
}

func TestReadPackageTodo_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), TodoFile)
	require.NoError(t, os.WriteFile(path, []byte("packs/bar: [not, a, map"), 0644))

	_, err := ReadPackageTodo(path)
	require.Error(t, err)
	assert.True(t, pkserrors.Is(err, pkserrors.ManifestInvalid))
}

func TestAllViolations(t *testing.T) {
	todo, err := ParsePackageTodo([]byte(fooTodo))
	require.NoError(t, err)
	p := newTestPack("packs/foo")
	p.PackageTodo = todo

	violations := p.AllViolations()

	require.Len(t, violations, 3)
	file := "packs/foo/app/services/foo.rb"
	assert.Equal(t, []ViolationIdentifier{
		{ViolationType: "dependency", File: file, ConstantName: "::Bar", ReferencingPackName: "packs/foo", DefiningPackName: "packs/bar"},
		{ViolationType: "dependency", File: file, ConstantName: "::Baz", ReferencingPackName: "packs/foo", DefiningPackName: "packs/bar"},
		{ViolationType: "privacy", File: file, ConstantName: "::Baz", ReferencingPackName: "packs/foo", DefiningPackName: "packs/bar"},
	}, violations)
}

func TestAllViolations_ExpandsFiles(t *testing.T) {
	p := newTestPack("packs/foo")
	p.PackageTodo = PackageTodo{
		"packs/bar": {
			"::Bar": {ViolationTypes: []string{"dependency"}, Files: []string{"a.rb", "b.rb"}},
		},
	}

	assert.Len(t, p.AllViolations(), 2)
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		yml     string
		want    EnforcementSetting
		deps    []string
		wantErr bool
	}{
		{name: "omitted enforcement is off", yml: "dependencies:\n- packs/bar\n", want: Off, deps: []string{"packs/bar"}},
		{name: "false", yml: "enforce_dependencies: false\n", want: Off},
		{name: "true", yml: "enforce_dependencies: true\n", want: On},
		{name: "strict", yml: "enforce_dependencies: strict\n", want: Strict},
		{name: "empty manifest", yml: "# nothing here\n", want: Off},
		{name: "invalid value", yml: "enforce_dependencies: sometimes\n", wantErr: true},
		{name: "non-scalar value", yml: "enforce_dependencies: [true]\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.yml))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.EnforceDependencies)
			assert.ElementsMatch(t, tt.deps, m.Dependencies)
		})
	}
}

func TestEnforcementSetting_YAML(t *testing.T) {
	for _, s := range []EnforcementSetting{Off, On, Strict} {
		data, err := yaml.Marshal(map[string]EnforcementSetting{"enforce_dependencies": s})
		require.NoError(t, err)

		var back map[string]EnforcementSetting
		require.NoError(t, yaml.Unmarshal(data, &back))
		assert.Equal(t, s, back["enforce_dependencies"], s.String())
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	packDir := filepath.Join(root, "packs", "foo")
	require.NoError(t, os.MkdirAll(filepath.Join(packDir, "app", "services"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(packDir, "app", "models", "concerns"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(packDir, ManifestFile), []byte(
		"enforce_dependencies: strict\ndependencies:\n- packs/bar\nignored_dependencies:\n- packs/legacy\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(packDir, TodoFile), []byte(fooTodo), 0644))

	p, err := Load(root, filepath.Join(packDir, ManifestFile))
	require.NoError(t, err)

	assert.Equal(t, "packs/foo", p.Name)
	assert.Equal(t, packDir, p.Root())
	assert.Equal(t, Strict, p.EnforceDependencies)
	assert.True(t, p.DependsOn("packs/bar"))
	assert.True(t, p.Ignores("packs/legacy"))
	assert.Len(t, p.AllViolations(), 3)

	roots, err := p.DefaultAutoloadRoots()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(packDir, "app", "models"),
		filepath.Join(packDir, "app", "models", "concerns"),
		filepath.Join(packDir, "app", "services"),
	}, roots)
}

func TestLoad_RootPack(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestFile), []byte("enforce_dependencies: true\n"), 0644))

	p, err := Load(root, filepath.Join(root, ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, RootPackName, p.Name)
	assert.Equal(t, On, p.EnforceDependencies)
}

func TestLoad_InvalidManifest(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, ManifestFile)
	require.NoError(t, os.WriteFile(manifest, []byte("enforce_dependencies: maybe\n"), 0644))

	_, err := Load(root, manifest)
	require.Error(t, err)
	assert.True(t, pkserrors.Is(err, pkserrors.ManifestInvalid))
}
