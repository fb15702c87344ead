package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/riseofmachine/toolaudit/internal/config"
	"github.com/riseofmachine/toolaudit/internal/slug"
	"github.com/spf13/cobra"
)

// NewSlugifyCmd creates the slugify command.
func NewSlugifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slugify [dataset-file]",
		Short: "Fill in missing slugs and sort records by title",
		Long: `Slugify normalizes the primary dataset file in place.

For every tool record without a slug it derives one from the title
(lowercased, whitespace collapsed to hyphens, punctuation stripped), then
sorts the records of each category by title using locale-aware comparison.
Records keep all of their fields, including ones this tool does not know
about; object keys are written in sorted order and the file is indented
with two spaces.

Examples:
  # Normalize the default dataset file
  toolaudit slugify

  # Normalize a specific file
  toolaudit slugify exports/tools.json

  # Report what would change without writing
  toolaudit slugify --check`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSlugifyCmd,
	}

	cmd.Flags().Bool("check", false,
		"Report needed changes without rewriting the file (exit 1 if any)")

	return cmd
}

// runSlugifyCmd executes the slugify command.
func runSlugifyCmd(cmd *cobra.Command, args []string) error {
	datasetPath := config.DefaultDatasetPath
	if len(args) > 0 {
		datasetPath = args[0]
	}

	checkOnly, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}

	original, err := os.ReadFile(datasetPath) //nolint:gosec // User-provided dataset path is intentional
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	normalized, filled, err := normalizeDataset(original)
	if err != nil {
		return fmt.Errorf("failed to normalize %s: %w", datasetPath, err)
	}

	if bytes.Equal(original, normalized) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already normalized\n", datasetPath)
		return nil
	}

	if checkOnly {
		return fmt.Errorf("%s needs normalization (%d slugs to fill); run 'toolaudit slugify' to rewrite it", datasetPath, filled)
	}

	if err := os.WriteFile(datasetPath, normalized, 0600); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Normalized %s (%d slugs filled)\n", datasetPath, filled)
	return nil
}

// normalizeDataset fills missing slugs and sorts each category's records by
// title. It returns the rewritten document and the number of slugs filled.
//
// Records are decoded as generic maps rather than typed structs so fields
// this tool does not know about survive the rewrite. Numbers are kept as
// json.Number to avoid float reformatting.
func normalizeDataset(data []byte) ([]byte, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("invalid JSON: %w", err)
	}

	categories, ok := doc["tools"].([]any)
	if !ok {
		return nil, 0, fmt.Errorf("document has no \"tools\" array")
	}

	comparer := slug.NewComparer()
	filled := 0

	for _, rawCategory := range categories {
		category, ok := rawCategory.(map[string]any)
		if !ok {
			return nil, 0, fmt.Errorf("\"tools\" entry is not an object")
		}

		records, ok := category["content"].([]any)
		if !ok {
			continue // A category without a content array has nothing to normalize.
		}

		for _, rawRecord := range records {
			record, ok := rawRecord.(map[string]any)
			if !ok {
				continue
			}

			title, _ := record["title"].(string)
			if existing, _ := record["slug"].(string); existing == "" && title != "" {
				record["slug"] = slug.Make(title)
				filled++
			}
		}

		sort.SliceStable(records, func(i, j int) bool {
			a, _ := records[i].(map[string]any)
			b, _ := records[j].(map[string]any)
			titleA, _ := a["title"].(string)
			titleB, _ := b["title"].(string)
			return comparer.Less(titleA, titleB)
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, 0, fmt.Errorf("failed to encode dataset: %w", err)
	}

	return buf.Bytes(), filled, nil
}
