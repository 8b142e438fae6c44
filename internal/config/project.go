package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pks/internal/inflect"
	"pks/internal/pack"
	"pks/internal/paths"
	"pks/internal/slogutil"
)

// Project is a loaded repository: configuration, packs and the files to check.
// It is read-only after Load.
type Project struct {
	// Root is the absolute project root
	Root string

	Config    *Config
	Registry  *pack.Registry
	Inflector *inflect.Inflector

	// IncludedFiles are absolute paths matching Include and not Exclude, sorted
	IncludedFiles []string

	included map[string]struct{}
}

// Load reads packwerk.yml, discovers and parses every package.yml, builds the
// registry and expands the included files.
func Load(root string, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg, err := LoadConfig(absRoot)
	if err != nil {
		return nil, err
	}

	packs, err := discoverPacks(absRoot, cfg)
	if err != nil {
		return nil, err
	}
	for _, name := range pack.Duplicates(packs) {
		logger.Warn("Duplicate pack name, keeping first occurrence", "pack", name)
	}
	registry := pack.Build(packs)

	acronyms, err := inflect.LoadAcronyms(paths.JoinRootPath(absRoot, cfg.InflectionsPath))
	if err != nil {
		return nil, err
	}

	files, err := expandIncluded(absRoot, cfg)
	if err != nil {
		return nil, err
	}

	included := make(map[string]struct{}, len(files))
	for _, f := range files {
		included[f] = struct{}{}
	}

	logger.Debug("Project loaded",
		"root", absRoot,
		"packs", registry.Len(),
		"included_files", len(files),
		"acronyms", len(acronyms),
	)

	return &Project{
		Root:          absRoot,
		Config:        cfg,
		Registry:      registry,
		Inflector:     inflect.New(acronyms),
		IncludedFiles: files,
		included:      included,
	}, nil
}

// discoverPacks loads every package.yml under the configured package paths,
// in path order. The root pack always exists; without a root manifest it is
// implicit with enforcement off.
func discoverPacks(root string, cfg *Config) ([]*pack.Pack, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var manifests []string

	for _, pattern := range cfg.PackagePaths {
		glob := path.Join(strings.TrimSuffix(pattern, "/"), pack.ManifestFile)
		matches, err := doublestar.Glob(fsys, glob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob package path %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || isExcluded(cfg.Exclude, m) {
				continue
			}
			seen[m] = true
			manifests = append(manifests, m)
		}
	}
	if _, err := os.Stat(filepath.Join(root, pack.ManifestFile)); err == nil && !seen[pack.ManifestFile] {
		manifests = append(manifests, pack.ManifestFile)
	}
	sort.Strings(manifests)

	packs := make([]*pack.Pack, 0, len(manifests)+1)
	hasRoot := false
	for _, m := range manifests {
		p, err := pack.Load(root, paths.JoinRootPath(root, m))
		if err != nil {
			return nil, err
		}
		if p.Name == pack.RootPackName {
			hasRoot = true
		}
		packs = append(packs, p)
	}

	if !hasRoot {
		packs = append(packs, &pack.Pack{
			Name:                pack.RootPackName,
			Manifest:            filepath.Join(root, pack.ManifestFile),
			RelativePath:        pack.RootPackName,
			Dependencies:        pack.NewStringSet(),
			IgnoredDependencies: pack.NewStringSet(),
			PackageTodo:         pack.PackageTodo{},
		})
	}
	return packs, nil
}

func expandIncluded(root string, cfg *Config) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range cfg.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || isExcluded(cfg.Exclude, m) {
				continue
			}
			seen[m] = true
			files = append(files, paths.JoinRootPath(root, m))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isExcluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// IsIncluded reports whether an absolute path is one of the included files.
func (p *Project) IsIncluded(absolutePath string) bool {
	_, ok := p.included[filepath.Clean(absolutePath)]
	return ok
}

// CacheDir returns the absolute cache directory.
func (p *Project) CacheDir() string {
	return paths.ResolveCacheDir(p.Root, p.Config.CacheDirectory)
}

// AutoloadPaths returns absolute autoload root directories mapped to their
// namespace ("" for global): each pack's default roots plus the configured
// autoload_roots, whose keys may be globs.
func (p *Project) AutoloadPaths() (map[string]string, error) {
	out := make(map[string]string)

	for _, pk := range p.Registry.Packs() {
		roots, err := pk.DefaultAutoloadRoots()
		if err != nil {
			return nil, fmt.Errorf("failed to list autoload roots of %s: %w", pk.Name, err)
		}
		for _, r := range roots {
			out[r] = ""
		}
	}

	fsys := os.DirFS(p.Root)
	for pattern, namespace := range p.Config.AutoloadRoots {
		if namespace == "::Object" {
			namespace = ""
		}
		matches, err := doublestar.Glob(fsys, strings.TrimSuffix(pattern, "/"))
		if err != nil {
			return nil, fmt.Errorf("failed to glob autoload root %q: %w", pattern, err)
		}
		for _, m := range matches {
			abs := paths.JoinRootPath(p.Root, m)
			if info, err := os.Stat(abs); err != nil || !info.IsDir() {
				continue
			}
			out[abs] = namespace
		}
	}
	return out, nil
}

// IgnoredDefinitions returns ignored_definitions with absolute file paths.
func (p *Project) IgnoredDefinitions() map[string][]string {
	out := make(map[string][]string, len(p.Config.IgnoredDefinitions))
	for constant, files := range p.Config.IgnoredDefinitions {
		fqn := "::" + strings.TrimPrefix(constant, "::")
		abs := make([]string, 0, len(files))
		for _, f := range files {
			abs = append(abs, paths.JoinRootPath(p.Root, f))
		}
		out[fqn] = abs
	}
	return out
}

// RelativePath returns absolutePath relative to the project root.
func (p *Project) RelativePath(absolutePath string) string {
	rel, err := paths.RelativePath(p.Root, absolutePath)
	if err != nil {
		return filepath.ToSlash(absolutePath)
	}
	return rel
}
