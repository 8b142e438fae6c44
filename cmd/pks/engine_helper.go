package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"pks/internal/cache"
	"pks/internal/config"
	"pks/internal/parser"
	"pks/internal/paths"
	"pks/internal/references"
	"pks/internal/slogutil"
)

// errCheckFailed signals a check that found violations; main exits 1 without
// printing it.
var errCheckFailed = errors.New("check failed")

type sessionOptions struct {
	Root               string
	Verbose            bool
	Quiet              bool
	LogFormat          string
	ExperimentalParser bool
	NoCache            bool
	LogOutput          io.Writer
}

// session is everything a command needs for one run.
type session struct {
	project  *config.Project
	cache    cache.Cache
	pipeline *references.Pipeline
	logger   *slog.Logger
	runID    string
}

// openSession loads the project and opens the cache.
func openSession(opts sessionOptions) (*session, error) {
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, err := slogutil.New(out, slogutil.LevelFromVerbosity(opts.Verbose, opts.Quiet), opts.LogFormat)
	if err != nil {
		return nil, err
	}
	runID := uuid.New().String()
	logger = logger.With("run_id", runID)

	project, err := config.Load(opts.Root, logger)
	if err != nil {
		return nil, err
	}
	if opts.ExperimentalParser {
		project.Config.ExperimentalParser = true
	}
	if opts.NoCache {
		project.Config.Cache = false
	}

	c, err := cache.Open(cache.Options{
		Enabled:   project.Config.Cache,
		Backend:   project.Config.CacheBackend,
		Directory: project.CacheDir(),
	}, parser.NewRubyExtractor(), logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Session opened",
		"root", project.Root,
		"cache", project.Config.Cache,
		"cache_backend", project.Config.CacheBackend,
		"experimental_parser", project.Config.ExperimentalParser,
	)

	return &session{
		project:  project,
		cache:    c,
		pipeline: references.NewPipeline(project, c, logger),
		logger:   logger,
		runID:    runID,
	}, nil
}

// Close releases the cache.
func (s *session) Close() error {
	return s.cache.Close()
}

// references resolves the references of files, through the delegated
// extractor when delegate_extraction is set.
func (s *session) references(ctx context.Context, files []string) ([]references.Reference, error) {
	var (
		refs []references.Reference
		err  error
	)
	if s.project.Config.DelegateExtraction {
		ext := references.NewTreeSitterExtractor(s.cache, s.project.Config.Parallelism)
		refs, err = s.pipeline.AllReferencesWithExtractor(ctx, files, ext)
	} else {
		refs, err = s.pipeline.AllReferences(ctx, files)
	}
	if err != nil {
		return nil, err
	}
	references.SortReferences(refs)
	return refs, nil
}

// selectFiles maps CLI arguments to included files. No arguments selects every
// included file; a directory selects the included files below it.
func (s *session) selectFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		return s.project.IncludedFiles, nil
	}

	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		abs := arg
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(s.project.Root, arg)
		}
		abs = filepath.Clean(abs)
		if !paths.IsWithinRoot(abs, s.project.Root) {
			return nil, fmt.Errorf("%s is outside the project root %s", arg, s.project.Root)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if s.project.IsIncluded(abs) && !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
			continue
		}
		for _, f := range s.project.IncludedFiles {
			if paths.HasDirPrefix(f, abs) && !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
