package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pks/internal/checker"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rewrite package_todo.yml from current violations",
	Long: `Check every included file and record all current dependency violations in
the package_todo.yml of each referencing pack. Ledgers of packs without
violations are removed. New violations in packs with
enforce_dependencies: strict are never recorded; they are listed and the
command fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(optionsFromFlags(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := newContext()
		defer cancel()

		return runUpdate(ctx, s, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(ctx context.Context, s *session, out io.Writer) error {
	refs, err := s.references(ctx, s.project.IncludedFiles)
	if err != nil {
		return err
	}

	result := checker.Check(s.project.Registry, refs)
	written, err := checker.WritePackageTodos(s.project.Registry, result)
	if err != nil {
		return err
	}

	s.logger.Info("Ledgers updated",
		"violations", len(result.Violations),
		"ledgers", written,
		"strict_failures", len(result.StrictFailures),
	)
	fmt.Fprintf(out, "Successfully updated %d package_todo.yml file(s)\n", written)

	if len(result.StrictFailures) > 0 {
		fmt.Fprintln(out)
		for _, v := range result.StrictFailures {
			fmt.Fprintf(out, "%s\n\n", v.Message())
		}
		return fmt.Errorf("%d violation(s) in packs enforcing dependencies strictly were not recorded", len(result.StrictFailures))
	}
	return nil
}
