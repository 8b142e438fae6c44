package main

import (
	"github.com/spf13/cobra"

	"pks/internal/version"
)

var (
	projectRootFlag        string
	verboseFlag            bool
	quietFlag              bool
	logFormatFlag          string
	experimentalParserFlag bool
	noCacheFlag            bool
)

var rootCmd = &cobra.Command{
	Use:   "pks",
	Short: "pks - package boundary checker for Ruby codebases",
	Long: `pks enforces the dependency boundaries declared by packs: directories with a
package.yml manifest. It resolves every constant reference in the codebase to
the pack that defines it and reports references to undeclared dependencies.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("pks version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectRootFlag, "project-root", ".", "Project root containing packwerk.yml")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable logging")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&experimentalParserFlag, "experimental-parser", false,
		"Resolve constants from definitions found in source instead of file names")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false, "Do not read or write the extraction cache")
}

// optionsFromFlags collects the global flags.
func optionsFromFlags(cmd *cobra.Command) sessionOptions {
	return sessionOptions{
		Root:               projectRootFlag,
		Verbose:            verboseFlag,
		Quiet:              quietFlag,
		LogFormat:          logFormatFlag,
		ExperimentalParser: experimentalParserFlag,
		NoCache:            noCacheFlag,
		LogOutput:          cmd.ErrOrStderr(),
	}
}
