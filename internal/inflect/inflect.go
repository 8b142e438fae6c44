// Package inflect converts Ruby file and directory names into constant names
// the way the Rails inflector does, including registered acronyms.
package inflect

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// acronymPattern matches `inflect.acronym "API"` and `inflect.acronym('API')`.
var acronymPattern = regexp.MustCompile(`\.acronym\(?\s*["']([^"']+)["']`)

// Inflector camelizes underscored names.
type Inflector struct {
	// acronyms maps the lowercase form to the registered spelling
	acronyms map[string]string
}

// New creates an inflector that knows the given acronyms.
func New(acronyms []string) *Inflector {
	table := make(map[string]string, len(acronyms))
	for _, a := range acronyms {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		table[strings.ToLower(a)] = a
	}
	return &Inflector{acronyms: table}
}

// ParseAcronyms extracts acronym registrations from an inflections initializer.
func ParseAcronyms(source string) []string {
	var out []string
	for _, m := range acronymPattern.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}

// LoadAcronyms reads acronyms from an inflections initializer. A missing file
// yields no acronyms.
func LoadAcronyms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read inflections %s: %w", path, err)
	}
	return ParseAcronyms(string(data)), nil
}

// Acronyms returns the registered acronyms, sorted.
func (i *Inflector) Acronyms() []string {
	out := make([]string, 0, len(i.acronyms))
	for _, a := range i.acronyms {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Camelize turns "bar_api" into "BarAPI" (with API registered) and
// "admin/users_controller" into "Admin::UsersController".
func (i *Inflector) Camelize(term string) string {
	segments := strings.Split(term, "/")
	for idx, segment := range segments {
		segments[idx] = i.camelizeSegment(segment)
	}
	return strings.Join(segments, "::")
}

func (i *Inflector) camelizeSegment(segment string) string {
	var b strings.Builder
	for _, word := range strings.Split(segment, "_") {
		if word == "" {
			continue
		}
		if acronym, ok := i.acronyms[strings.ToLower(word)]; ok {
			b.WriteString(acronym)
			continue
		}
		b.WriteString(capitalize(word))
	}
	return b.String()
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + word[size:]
}
