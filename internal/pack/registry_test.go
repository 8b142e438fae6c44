package pack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = "/repo"

func newTestPack(name string, deps ...string) *Pack {
	dir := testRoot
	if name != RootPackName {
		dir = filepath.Join(testRoot, filepath.FromSlash(name))
	}
	return &Pack{
		Name:         name,
		Manifest:     filepath.Join(dir, ManifestFile),
		RelativePath: name,
		Dependencies: NewStringSet(deps...),
		PackageTodo:  PackageTodo{},
	}
}

func TestBuild_SortsLongestNameFirst(t *testing.T) {
	registry := Build([]*Pack{
		newTestPack("packs/foo"),
		newTestPack(RootPackName),
		newTestPack("packs/foo/bar"),
		newTestPack("packs/baz"),
	})

	assert.Equal(t, []string{"packs/foo/bar", "packs/baz", "packs/foo", "."}, registry.Names())
}

func TestBuild_DeterministicRegardlessOfInputOrder(t *testing.T) {
	a := Build([]*Pack{newTestPack("packs/b"), newTestPack("packs/a"), newTestPack("packs/aa")})
	b := Build([]*Pack{newTestPack("packs/aa"), newTestPack("packs/a"), newTestPack("packs/b")})

	assert.Equal(t, a.Names(), b.Names())
	assert.Equal(t, []string{"packs/aa", "packs/a", "packs/b"}, a.Names())
}

func TestBuild_DeduplicatesByName(t *testing.T) {
	first := newTestPack("packs/foo", "packs/bar")
	second := newTestPack("packs/foo", "packs/baz")

	registry := Build([]*Pack{first, second})

	require.Equal(t, 1, registry.Len())
	assert.Same(t, first, registry.ForPack("packs/foo"))
	assert.True(t, registry.ForPack("packs/foo").DependsOn("packs/bar"))
	assert.Equal(t, []string{"packs/foo"}, Duplicates([]*Pack{first, second}))
}

func TestForFile(t *testing.T) {
	registry := Build([]*Pack{
		newTestPack(RootPackName),
		newTestPack("packs/foo"),
		newTestPack("packs/foo/bar"),
	})

	tests := []struct {
		name     string
		path     string
		wantPack string
		wantOK   bool
	}{
		{"nested pack wins over ancestor", "/repo/packs/foo/bar/app/models/bar.rb", "packs/foo/bar", true},
		{"plain pack", "/repo/packs/foo/app/services/foo.rb", "packs/foo", true},
		{"sibling with shared prefix falls to root", "/repo/packs/foo_extra/x.rb", ".", true},
		{"root pack", "/repo/app/models/user.rb", ".", true},
		{"outside every pack", "/elsewhere/app/models/user.rb", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := registry.ForFile(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPack, got)
		})
	}
}

func TestForFile_NoRootPack(t *testing.T) {
	registry := Build([]*Pack{newTestPack("packs/foo")})

	_, ok := registry.ForFile("/repo/packs/foo_extra/x.rb")
	assert.False(t, ok)

	_, ok = registry.ForFile("/repo/lib/tasks/x.rake")
	assert.False(t, ok)
}

func TestForRelativeFile(t *testing.T) {
	registry := Build([]*Pack{
		newTestPack(RootPackName),
		newTestPack("packs/foo"),
		newTestPack("packs/foo/bar"),
	})

	name, ok := registry.ForRelativeFile("packs/foo/bar/app/models/bar.rb")
	require.True(t, ok)
	assert.Equal(t, "packs/foo/bar", name)

	name, ok = registry.ForRelativeFile("packs/foo_extra/x.rb")
	require.True(t, ok)
	assert.Equal(t, ".", name)
}

func TestForPack_UnknownNamePanics(t *testing.T) {
	registry := Build([]*Pack{newTestPack("packs/foo")})

	assert.Panics(t, func() { registry.ForPack("packs/missing") })

	_, ok := registry.Lookup("packs/missing")
	assert.False(t, ok)
}

func TestPacks_ReturnsCopy(t *testing.T) {
	registry := Build([]*Pack{newTestPack("packs/foo"), newTestPack("packs/bar")})

	packs := registry.Packs()
	packs[0] = nil

	assert.NotNil(t, registry.Packs()[0])
}
