package references

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pks/internal/cache"
	"pks/internal/config"
	"pks/internal/parser"
	"pks/internal/resolver"
	"pks/internal/slogutil"
)

// Pipeline resolves the references of a set of files for a loaded project.
type Pipeline struct {
	project *config.Project
	cache   cache.Cache
	logger  *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(project *config.Project, c cache.Cache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Pipeline{
		project: project,
		cache:   c,
		logger:  logger,
	}
}

// AllReferences extracts and resolves every constant usage in absolutePaths.
// The resolution strategy follows the experimental_parser setting. The result
// is unordered; use SortReferences for a stable order.
func (p *Pipeline) AllReferences(ctx context.Context, absolutePaths []string) ([]Reference, error) {
	start := time.Now()
	p.logger.Debug("Getting unresolved references", "files", len(absolutePaths))

	var (
		files []*parser.ProcessedFile
		res   resolver.ConstantResolver
		err   error
	)
	if p.project.Config.ExperimentalParser {
		files, res, err = p.definitionStrategy(ctx, absolutePaths)
	} else {
		files, res, err = p.conventionStrategy(ctx, absolutePaths)
	}
	if err != nil {
		return nil, err
	}
	p.logCacheStats()

	p.logger.Debug("Resolving references", "files", len(files))
	chunks, err := parallelMap(ctx, p.project.Config.Parallelism, files,
		func(ctx context.Context, pf *parser.ProcessedFile) ([]Reference, error) {
			var refs []Reference
			for _, ur := range pf.UnresolvedReferences {
				refs = append(refs, FromUnresolved(p.project.Registry, p.project.Root, res, ur, pf.AbsolutePath)...)
			}
			return refs, nil
		})
	if err != nil {
		return nil, err
	}

	refs := concat(chunks)
	p.logger.Debug("Resolved references",
		"references", len(refs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return refs, nil
}

// conventionStrategy extracts only the requested files; definitions come from
// file names under the autoload roots.
func (p *Pipeline) conventionStrategy(ctx context.Context, absolutePaths []string) ([]*parser.ProcessedFile, resolver.ConstantResolver, error) {
	files, err := p.processFiles(ctx, absolutePaths)
	if err != nil {
		return nil, nil, err
	}

	autoload, err := p.project.AutoloadPaths()
	if err != nil {
		return nil, nil, err
	}
	res, err := resolver.NewZeitwerkResolver(autoload, p.project.Inflector)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build constant resolver: %w", err)
	}
	p.logger.Debug("Built convention resolver", "roots", len(autoload), "constants", res.Len())
	return files, res, nil
}

// definitionStrategy extracts every included file to collect definitions, then
// keeps only the requested files for resolution.
func (p *Pipeline) definitionStrategy(ctx context.Context, absolutePaths []string) ([]*parser.ProcessedFile, resolver.ConstantResolver, error) {
	all, err := p.processFiles(ctx, p.project.IncludedFiles)
	if err != nil {
		return nil, nil, err
	}

	res := resolver.NewDefinitionResolver(all, p.project.IgnoredDefinitions())
	p.logger.Debug("Built definition resolver", "files", len(all), "constants", res.Len())

	wanted := make(map[string]struct{}, len(absolutePaths))
	for _, f := range absolutePaths {
		wanted[f] = struct{}{}
	}
	files := make([]*parser.ProcessedFile, 0, len(absolutePaths))
	for _, pf := range all {
		if _, ok := wanted[pf.AbsolutePath]; ok {
			files = append(files, pf)
		}
	}
	return files, res, nil
}

func (p *Pipeline) processFiles(ctx context.Context, absolutePaths []string) ([]*parser.ProcessedFile, error) {
	return parallelMap(ctx, p.project.Config.Parallelism, absolutePaths,
		func(ctx context.Context, path string) (*parser.ProcessedFile, error) {
			return p.cache.GetOrExtract(ctx, path)
		})
}

func (p *Pipeline) logCacheStats() {
	fc, ok := p.cache.(*cache.FingerprintCache)
	if !ok {
		return
	}
	stats := fc.Stats()
	p.logger.Debug("Cache stats", "hits", stats.Hits, "misses", stats.Misses)
}
