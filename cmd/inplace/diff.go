package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaguanLabs/inplace"
	"github.com/spf13/cobra"
)

func newDiffCmd(g *globalOptions) *cobra.Command {
	var (
		selector   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "diff <previous> [current]",
		Short: "Show which elements changed between two versions of a page",
		Long: `Compare the translatable elements of two versions of a page and list the
ones that would need a new translation. Reads the current version from stdin
when only the previous one is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldData, err := os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
			if err != nil {
				return fmt.Errorf("reading previous version: %w", err)
			}
			newContent, newName, err := readInput(g, args[1:])
			if err != nil {
				return err
			}

			oldDoc, err := inplace.ParseDocument(string(oldData))
			if err != nil {
				return fmt.Errorf("parsing previous version: %w", err)
			}
			newDoc, err := inplace.ParseDocument(newContent)
			if err != nil {
				return fmt.Errorf("parsing current version: %w", err)
			}

			diff := inplace.DiffAnchors(oldDoc.Describe(selector), newDoc.Describe(selector))
			if jsonOutput {
				return writeDiffJSON(g.stdout, diff, filepath.Base(args[0]), newName)
			}
			writeDiffText(g.stdout, diff, filepath.Base(args[0]), newName)
			return nil
		},
	}

	cmd.Flags().StringVar(&selector, "selector", inplace.DefaultSelector, "CSS selector for candidate elements")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	return cmd
}

func writeDiffJSON(w io.Writer, diff *inplace.DiffResult, oldName, newName string) error {
	type modified struct {
		Path string `json:"path"`
		Old  string `json:"old"`
		New  string `json:"new"`
	}
	type diffOutput struct {
		PreviousFile     string            `json:"previous_file"`
		CurrentFile      string            `json:"current_file"`
		Stats            inplace.DiffStats `json:"stats"`
		NeedsTranslation []string          `json:"needs_translation"`
		Added            []string          `json:"added,omitempty"`
		Removed          []string          `json:"removed,omitempty"`
		Modified         []modified        `json:"modified,omitempty"`
	}

	out := diffOutput{
		PreviousFile:     oldName,
		CurrentFile:      newName,
		Stats:            diff.Stats(),
		NeedsTranslation: []string{},
	}
	for _, a := range diff.NeedsTranslation() {
		out.NeedsTranslation = append(out.NeedsTranslation, a.Text)
	}
	for _, a := range diff.Added {
		out.Added = append(out.Added, a.Text)
	}
	for _, a := range diff.Removed {
		out.Removed = append(out.Removed, a.Text)
	}
	for _, m := range diff.Modified {
		out.Modified = append(out.Modified, modified{Path: m.New.Path, Old: m.Old.Text, New: m.New.Text})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeDiffText(w io.Writer, diff *inplace.DiffResult, oldName, newName string) {
	stats := diff.Stats()

	fmt.Fprintf(w, "Diff: %s vs %s\n\n", newName, oldName)
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(w, "  Modified:  %d\n\n", stats.Modified)

	if !diff.HasChanges() {
		fmt.Fprintf(w, "No changes detected. All translations are up to date.\n")
		return
	}

	fmt.Fprintf(w, "Needs translation: %d elements\n\n", len(diff.NeedsTranslation()))

	if len(diff.Added) > 0 {
		fmt.Fprintf(w, "Added:\n")
		for _, a := range diff.Added {
			fmt.Fprintf(w, "  + %q\n", truncate(a.Text, 50))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(diff.Modified) > 0 {
		fmt.Fprintf(w, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(w, "  ~ %s: %q -> %q\n", m.New.Path, truncate(m.Old.Text, 30), truncate(m.New.Text, 30))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(diff.Removed) > 0 {
		fmt.Fprintf(w, "Removed:\n")
		for _, a := range diff.Removed {
			fmt.Fprintf(w, "  - %q\n", truncate(a.Text, 50))
		}
		fmt.Fprintf(w, "\n")
	}
}
