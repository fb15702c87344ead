package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/riseofmachine/toolaudit/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/toolaudit.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new toolaudit configuration file",
		Long: `Initialize creates a new .toolaudit configuration file in the current directory.

The generated file includes:
- The default dataset and split directory locations
- Commented examples for the attribution marker and accepted schemes
- Documentation for all available options

Examples:
  # Create .toolaudit in current directory
  toolaudit init

  # Create config file at a specific path
  toolaudit init -o myconfig.yaml

  # Force overwrite existing file
  toolaudit init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/toolaudit.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Dataset and split directory locations")
	fmt.Fprintln(cmd.OutOrStdout(), "  - The required attribution marker")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Accepted URL schemes")

	return nil
}
