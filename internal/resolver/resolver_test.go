package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pks/internal/inflect"
	"pks/internal/parser"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# frozen_string_literal: true\n"), 0o644))
	}
}

func TestConventionalName(t *testing.T) {
	inf := inflect.New([]string{"API"})

	tests := []struct {
		file      string
		namespace string
		want      string
	}{
		{"foo/bar_api.rb", "", "::Foo::BarAPI"},
		{"user.rb", "", "::User"},
		{"user.rb", "::Object", "::User"},
		{"widget.rb", "Admin", "::Admin::Widget"},
		{"widget.rb", "::Admin", "::Admin::Widget"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConventionalName(tt.file, tt.namespace, inf), tt.file)
	}
}

func TestZeitwerkResolver(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"packs/foo/app/services/foo/bar_api.rb",
		"packs/foo/app/services/foo/bar.rb",
		"packs/bar/app/models/bar.rb",
		"app/models/user.rb",
		"app/models/concerns/auditable.rb",
	)

	autoload := map[string]string{
		filepath.Join(root, "packs/foo/app/services"): "",
		filepath.Join(root, "packs/bar/app/models"):   "",
		filepath.Join(root, "app/models"):             "",
		filepath.Join(root, "app/models/concerns"):    "",
		filepath.Join(root, "app/missing"):            "",
	}
	r, err := NewZeitwerkResolver(autoload, inflect.New([]string{"API"}))
	require.NoError(t, err)

	t.Run("acronym", func(t *testing.T) {
		got := r.Resolve("Foo::BarAPI", nil)
		require.Len(t, got, 1)
		assert.Equal(t, "::Foo::BarAPI", got[0].FullyQualifiedName)
		assert.Equal(t, filepath.Join(root, "packs/foo/app/services/foo/bar_api.rb"), got[0].DefiningFile)
	})

	t.Run("innermost namespace wins", func(t *testing.T) {
		got := r.Resolve("Bar", []string{"Foo"})
		require.Len(t, got, 1)
		assert.Equal(t, "::Foo::Bar", got[0].FullyQualifiedName)
		assert.Equal(t, filepath.Join(root, "packs/foo/app/services/foo/bar.rb"), got[0].DefiningFile)
	})

	t.Run("global from outside", func(t *testing.T) {
		got := r.Resolve("Bar", []string{"Other"})
		require.Len(t, got, 1)
		assert.Equal(t, "::Bar", got[0].FullyQualifiedName)
	})

	t.Run("absolute skips namespace", func(t *testing.T) {
		got := r.Resolve("::Bar", []string{"Foo"})
		require.Len(t, got, 1)
		assert.Equal(t, "::Bar", got[0].FullyQualifiedName)
	})

	t.Run("nested root claims its files", func(t *testing.T) {
		got := r.Resolve("Auditable", nil)
		require.Len(t, got, 1)
		assert.Equal(t, filepath.Join(root, "app/models/concerns/auditable.rb"), got[0].DefiningFile)
		assert.Empty(t, r.Resolve("Concerns::Auditable", nil))
	})

	t.Run("parent fallback keeps full name", func(t *testing.T) {
		got := r.Resolve("User::ROLES", nil)
		require.Len(t, got, 1)
		assert.Equal(t, "::User::ROLES", got[0].FullyQualifiedName)
		assert.Equal(t, filepath.Join(root, "app/models/user.rb"), got[0].DefiningFile)
	})

	t.Run("unresolvable", func(t *testing.T) {
		assert.Empty(t, r.Resolve("Nope", []string{"Foo"}))
		assert.Empty(t, r.Resolve("::", nil))
	})
}

func TestZeitwerkResolver_Namespace(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "lib/admin/widget.rb")

	r, err := NewZeitwerkResolver(map[string]string{filepath.Join(root, "lib/admin"): "Admin"}, inflect.New(nil))
	require.NoError(t, err)

	got := r.Resolve("Widget", []string{"Admin"})
	require.Len(t, got, 1)
	assert.Equal(t, "::Admin::Widget", got[0].FullyQualifiedName)
	assert.Empty(t, r.Resolve("Widget", nil))
	assert.Equal(t, 1, r.Len())
}

func TestDefinitionResolver(t *testing.T) {
	files := []*parser.ProcessedFile{
		{
			AbsolutePath: "/repo/packs/foo/lib/foo.rb",
			Definitions: []parser.Definition{
				{FullyQualifiedName: "::Foo"},
				{FullyQualifiedName: "::Foo::Bar"},
				{FullyQualifiedName: "::Foo::LIMIT"},
			},
		},
		{
			AbsolutePath: "/repo/packs/bar/lib/bar.rb",
			Definitions: []parser.Definition{
				{FullyQualifiedName: "::Bar"},
			},
		},
		{
			AbsolutePath: "/repo/packs/bar/lib/foo_ext.rb",
			Definitions: []parser.Definition{
				{FullyQualifiedName: "::Foo"},
			},
		},
		{
			AbsolutePath: "/repo/vendor/shim.rb",
			Definitions: []parser.Definition{
				{FullyQualifiedName: "::Bar"},
				{FullyQualifiedName: "::Shim"},
			},
		},
	}
	ignored := map[string][]string{
		"::Bar":  {"/repo/vendor/shim.rb"},
		"::Shim": nil,
	}
	r := NewDefinitionResolver(files, ignored)

	t.Run("namespace preference", func(t *testing.T) {
		got := r.Resolve("Bar", []string{"Foo"})
		require.Len(t, got, 1)
		assert.Equal(t, "::Foo::Bar", got[0].FullyQualifiedName)
	})

	t.Run("reopened constant", func(t *testing.T) {
		got := r.Resolve("Foo", nil)
		require.Len(t, got, 2)
		assert.Equal(t, "/repo/packs/bar/lib/foo_ext.rb", got[0].DefiningFile)
		assert.Equal(t, "/repo/packs/foo/lib/foo.rb", got[1].DefiningFile)
	})

	t.Run("ignored definitions", func(t *testing.T) {
		got := r.Resolve("::Bar", nil)
		require.Len(t, got, 1)
		assert.Equal(t, "/repo/packs/bar/lib/bar.rb", got[0].DefiningFile)
		assert.Empty(t, r.Resolve("Shim", nil))
	})

	t.Run("constant defined in file", func(t *testing.T) {
		got := r.Resolve("LIMIT", []string{"Foo::Bar"})
		require.Len(t, got, 1)
		assert.Equal(t, "::Foo::LIMIT", got[0].FullyQualifiedName)
	})

	assert.Equal(t, 4, r.Len())
}
