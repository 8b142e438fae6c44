package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pks/internal/inflect"
)

// ZeitwerkResolver infers definitions from file paths under autoload roots,
// following the Zeitwerk naming convention. File contents are never read.
type ZeitwerkResolver struct {
	index map[string][]string
}

// NewZeitwerkResolver enumerates the .rb files under each autoload root
// (absolute directory -> namespace, "" for the global namespace). A file under
// nested roots belongs to the most specific one.
func NewZeitwerkResolver(autoloadPaths map[string]string, inflector *inflect.Inflector) (*ZeitwerkResolver, error) {
	roots := make([]string, 0, len(autoloadPaths))
	for root := range autoloadPaths {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool {
		if len(roots[i]) != len(roots[j]) {
			return len(roots[i]) > len(roots[j])
		}
		return roots[i] < roots[j]
	})

	index := make(map[string][]string)
	claimed := make(map[string]bool)
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}

		files, err := doublestar.Glob(os.DirFS(root), "**/*.rb", doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		sort.Strings(files)

		namespace := strings.Trim(autoloadPaths[root], ":")
		for _, rel := range files {
			abs := filepath.Join(root, filepath.FromSlash(rel))
			if claimed[abs] {
				continue
			}
			claimed[abs] = true

			fqn := ConventionalName(rel, namespace, inflector)
			index[fqn] = append(index[fqn], abs)
		}
	}

	for fqn := range index {
		sort.Strings(index[fqn])
	}

	return &ZeitwerkResolver{index: index}, nil
}

// ConventionalName returns the constant a root-relative file is expected to
// define, e.g. "foo/bar_api.rb" -> "::Foo::BarAPI". The "Object" namespace is
// the global namespace.
func ConventionalName(relativeFile string, namespace string, inflector *inflect.Inflector) string {
	base := strings.TrimSuffix(filepath.ToSlash(relativeFile), ".rb")
	name := inflector.Camelize(base)
	namespace = strings.Trim(namespace, ":")
	if namespace == "" || namespace == "Object" {
		return "::" + name
	}
	return "::" + namespace + "::" + name
}

// Resolve implements ConstantResolver.
func (r *ZeitwerkResolver) Resolve(name string, namespacePath []string) []Resolution {
	return lookup(name, namespacePath, func(fqn string) []string {
		return r.index[fqn]
	})
}

// Len returns the number of known constants.
func (r *ZeitwerkResolver) Len() int {
	return len(r.index)
}
