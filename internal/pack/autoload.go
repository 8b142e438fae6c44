package pack

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultAutoloadPatterns are the pack-relative directories Rails treats as
// autoload roots: every app/ subdirectory and their concerns/ directories.
var defaultAutoloadPatterns = []string{"app/*", "app/*/concerns"}

// DefaultAutoloadRoots returns the existing autoload root directories of the
// pack as absolute paths, sorted.
func (p *Pack) DefaultAutoloadRoots() ([]string, error) {
	fsys := os.DirFS(p.Root())
	var roots []string
	for _, pattern := range defaultAutoloadPatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			abs := filepath.Join(p.Root(), filepath.FromSlash(m))
			info, err := os.Stat(abs)
			if err != nil || !info.IsDir() {
				continue
			}
			roots = append(roots, abs)
		}
	}
	sort.Strings(roots)
	return roots, nil
}
