package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pks/internal/cache"
	"pks/internal/parser"
)

var deleteCacheCmd = &cobra.Command{
	Use:   "delete-cache",
	Short: "Remove every cached extraction result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(optionsFromFlags(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		return runDeleteCache(s, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(deleteCacheCmd)
}

// runDeleteCache clears the configured backend even when caching is disabled
// for this run.
func runDeleteCache(s *session, out io.Writer) error {
	c, err := cache.Open(cache.Options{
		Enabled:   true,
		Backend:   s.project.Config.CacheBackend,
		Directory: s.project.CacheDir(),
	}, parser.NewRubyExtractor(), s.logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return err
	}
	s.logger.Debug("Cache cleared", "directory", s.project.CacheDir())
	fmt.Fprintf(out, "Deleted cache in %s\n", s.project.RelativePath(s.project.CacheDir()))
	return nil
}
