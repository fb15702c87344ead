// Package main provides the entry point for the toolaudit CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/riseofmachine/toolaudit/internal/audit"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for toolaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolaudit",
		Short: "Integrity checker for the AI-tools directory dataset",
		Long: `toolaudit validates the curated AI-tools directory dataset.

It checks that every tool record carries an outbound URL with an accepted
scheme and the directory's attribution marker, that no URL is declared by
more than one record, and that the per-category split files are well formed.

The process exits 0 when the dataset is clean and 1 when any issue is found,
so it can gate commits and CI runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewSlugifyCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and maps its outcome to the process exit
// code. A completed run that found issues exits 1 without printing another
// diagnostic; the report has already been written.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, audit.ErrIssuesFound) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
