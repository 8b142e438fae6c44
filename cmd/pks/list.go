package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	pkserrors "pks/internal/errors"
	"pks/internal/references"
)

var listReferencesPackFlag string

var listPacksCmd = &cobra.Command{
	Use:   "list-packs",
	Short: "List pack manifests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(optionsFromFlags(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		return runListPacks(s, cmd.OutOrStdout())
	},
}

var listReferencesCmd = &cobra.Command{
	Use:   "list-references [files...]",
	Short: "Print resolved references as JSON",
	Long: `Resolve every constant reference in the given files (or in every included
file) and print them as a JSON array ordered by file and position. With --pack,
only references made from that pack are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(optionsFromFlags(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := newContext()
		defer cancel()

		return runListReferences(ctx, s, cmd.OutOrStdout(), args, listReferencesPackFlag)
	},
}

func init() {
	rootCmd.AddCommand(listPacksCmd)
	listReferencesCmd.Flags().StringVar(&listReferencesPackFlag, "pack", "", "Only print references made from this pack")
	rootCmd.AddCommand(listReferencesCmd)
}

func runListPacks(s *session, out io.Writer) error {
	packs := s.project.Registry.Packs()
	sort.Slice(packs, func(i, j int) bool { return packs[i].Name < packs[j].Name })
	for _, p := range packs {
		fmt.Fprintln(out, s.project.RelativePath(p.Manifest))
	}
	return nil
}

func runListReferences(ctx context.Context, s *session, out io.Writer, args []string, packName string) error {
	if packName != "" {
		if _, ok := s.project.Registry.Lookup(packName); !ok {
			return pkserrors.Newf(pkserrors.PackNotFound, "no pack named %q", packName)
		}
	}

	files, err := s.selectFiles(args)
	if err != nil {
		return err
	}
	refs, err := s.references(ctx, files)
	if err != nil {
		return err
	}

	selected := make([]references.Reference, 0, len(refs))
	for _, r := range refs {
		if packName == "" || r.ReferencingPackName == packName {
			selected = append(selected, r)
		}
	}
	refs = selected

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(refs)
}
