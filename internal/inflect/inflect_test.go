package inflect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelize(t *testing.T) {
	inflector := New([]string{"API", "HTML", "GraphQL"})

	tests := []struct {
		in   string
		want string
	}{
		{"foo", "Foo"},
		{"foo_bar", "FooBar"},
		{"bar_api", "BarAPI"},
		{"api_client", "APIClient"},
		{"html_renderer", "HTMLRenderer"},
		{"graphql", "GraphQL"},
		{"admin/users_controller", "Admin::UsersController"},
		{"user_id", "UserId"},
		{"v2", "V2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, inflector.Camelize(tt.in))
		})
	}
}

func TestParseAcronyms(t *testing.T) {
	source := `
ActiveSupport::Inflector.inflections(:en) do |inflect|
  inflect.acronym "API"
  inflect.acronym('CSV')
  inflect.plural /^(ox)$/i, '\1en'
end
`
	assert.Equal(t, []string{"API", "CSV"}, ParseAcronyms(source))
}

func TestLoadAcronyms(t *testing.T) {
	dir := t.TempDir()

	acronyms, err := LoadAcronyms(filepath.Join(dir, "missing.rb"))
	require.NoError(t, err)
	assert.Empty(t, acronyms)

	path := filepath.Join(dir, "inflections.rb")
	require.NoError(t, os.WriteFile(path, []byte(`inflect.acronym "SMS"`), 0644))
	acronyms, err = LoadAcronyms(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SMS"}, acronyms)

	assert.Equal(t, []string{"SMS"}, New(acronyms).Acronyms())
}
