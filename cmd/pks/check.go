package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pks/internal/checker"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Report references to undeclared dependencies",
	Long: `Resolve every constant reference in the given files (or in every included
file) and report dependency violations that are not recorded in package_todo.yml.

Exits 1 when there are new violations. Stale ledger entries are reported on a
full run but do not fail the check.

Examples:
  pks check
  pks check packs/foo
  pks check packs/foo/app/models/foo.rb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(optionsFromFlags(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := newContext()
		defer cancel()

		return runCheck(ctx, s, cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context, s *session, out io.Writer, args []string) error {
	files, err := s.selectFiles(args)
	if err != nil {
		return err
	}
	refs, err := s.references(ctx, files)
	if err != nil {
		return err
	}

	result := checker.Check(s.project.Registry, refs)
	fullRun := len(args) == 0

	for _, v := range result.New {
		fmt.Fprintf(out, "%s\n\n", v.Message())
	}
	if len(result.StrictFailures) > 0 {
		fmt.Fprintf(out, "%d violation(s) in packs enforcing dependencies strictly\n", len(result.StrictFailures))
	}
	if fullRun && len(result.Stale) > 0 {
		fmt.Fprintf(out, "There were %d stale violation(s) found, please run `pks update`\n", len(result.Stale))
	}
	fmt.Fprintf(out, "%d file(s) inspected, %d new violation(s) found\n", len(files), len(result.New))

	s.logger.Info("Check finished",
		"files", len(files),
		"references", len(refs),
		"violations", len(result.Violations),
		"new", len(result.New),
		"stale", len(result.Stale),
	)

	if result.Failed() {
		return errCheckFailed
	}
	fmt.Fprintln(out, "No offenses detected")
	return nil
}
