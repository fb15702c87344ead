package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riseofmachine/toolaudit/internal/config"
	"github.com/riseofmachine/toolaudit/internal/database"
	"github.com/riseofmachine/toolaudit/internal/model"
	"github.com/spf13/cobra"
)

// Constants for issue trend direction.
const (
	trendImproved  = "improved"
	trendWorsened  = "worsened"
	trendUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command inspects validation runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [dataset-file]",
		Short: "Inspect past validation runs",
		Long: `History lists and compares validation runs stored in the database.

Every 'toolaudit validate' run is recorded (unless --no-save was given), so
the history shows how the dataset's issue counts evolve over time.

Examples:
  # List recent runs for a dataset
  toolaudit history data/tools.json

  # Compare the latest two runs for a dataset
  toolaudit history --compare data/tools.json

  # Compare the latest run with a specific earlier run
  toolaudit history --compare --with-run-id 5 data/tools.json

  # List all datasets with recorded runs
  toolaudit history --list-datasets

  # Output in JSON format
  toolaudit history --json data/tools.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-datasets", "L", false,
		"List all datasets with recorded runs")
	cmd.Flags().BoolP("compare", "C", false,
		"Compare the latest two runs for the dataset")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with this run ID (implies --compare)")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDatasets, err := cmd.Flags().GetBool("list-datasets")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad invocation
	// never takes the write lock.
	var datasetPath string
	if !listDatasets {
		datasetPath = config.DefaultDatasetPath
		if len(args) > 0 {
			datasetPath = args[0]
		}
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := cmd.Context()

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	if listDatasets {
		return listRecordedDatasets(ctx, db, jsonOutput)
	}

	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}

	if compare || withRunID > 0 {
		return runComparison(ctx, db, datasetPath, withRunID, jsonOutput)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listRunHistory(ctx, db, datasetPath, limit, jsonOutput)
}

// listRecordedDatasets lists every dataset with stored runs.
func listRecordedDatasets(ctx context.Context, db *database.AuditDB, jsonOutput bool) error {
	datasets, err := db.ListDatasets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if jsonOutput {
		return writeJSON(map[string]any{"datasets": datasets})
	}

	if len(datasets) == 0 {
		fmt.Println("No recorded runs found in the database.")
		fmt.Println("\nUse 'toolaudit validate' to validate a dataset and record the run.")
		return nil
	}

	fmt.Printf("Datasets with recorded runs (%d):\n\n", len(datasets))
	for _, dataset := range datasets {
		fmt.Printf("  • %s\n", dataset)
	}
	fmt.Println("\nUse 'toolaudit history <dataset>' to see the run history for a dataset.")

	return nil
}

// listRunHistory lists stored runs for one dataset, most recent first.
func listRunHistory(ctx context.Context, db *database.AuditDB, datasetPath string, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, datasetPath, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		return writeJSON(map[string]any{"dataset": datasetPath, "runs": runs})
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", datasetPath)
		fmt.Println("\nUse 'toolaudit validate' to validate this dataset.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", datasetPath, len(runs))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Verdict", "Issues")
	fmt.Println("  " + strings.Repeat("-", 64))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-8s  %s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			formatVerdict(run.Passed),
			formatIssueSummary(run.IssueSummary),
		)
	}

	fmt.Println("\nUse 'toolaudit history --compare <dataset>' to compare the latest two runs.")

	return nil
}

// formatVerdict formats a run verdict for display.
func formatVerdict(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

// formatIssueSummary formats the per-kind issue counts into a short string.
func formatIssueSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	// Fixed rendering order matching the report sections.
	kinds := []struct {
		key   string
		label string
	}{
		{model.KindMissingURL.String(), "url"},
		{model.KindMissingProtocol.String(), "proto"},
		{model.KindMissingRef.String(), "ref"},
		{model.KindDuplicateURL.String(), "dup"},
		{model.KindInvalidStructure.String(), "struct"},
	}

	var parts []string
	for _, kind := range kinds {
		if v := summary[kind.key]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", kind.label, v))
		}
	}

	if len(parts) == 0 {
		return "No issues"
	}
	return strings.Join(parts, " ")
}

// runComparison compares the latest run against an earlier one.
func runComparison(ctx context.Context, db *database.AuditDB, datasetPath string, withRunID int64, jsonOutput bool) error {
	reports, err := db.LatestRuns(ctx, datasetPath, 2)
	if err != nil {
		return fmt.Errorf("failed to get latest runs: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no run history found for %s", datasetPath)
	}

	current := reports[0]
	var previous *model.Report

	if withRunID > 0 {
		previous, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run %d: %w", withRunID, err)
		}
		if previous == nil {
			return fmt.Errorf("run with ID %d not found", withRunID)
		}
		if previous.Dataset != datasetPath {
			return fmt.Errorf("run %d belongs to %s, not %s", withRunID, previous.Dataset, datasetPath)
		}
	} else {
		if len(reports) < 2 {
			return errors.New("at least 2 runs are required for comparison (found 1)")
		}
		previous = reports[1]
	}

	comparison := compareReports(previous, current)

	if jsonOutput {
		return writeJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two validation runs.
type ComparisonResult struct {
	// Dataset is the compared dataset path.
	Dataset string `json:"dataset"`

	// PreviousRun contains summary counts of the earlier run.
	PreviousRun RunMetadata `json:"previous_run"`

	// CurrentRun contains summary counts of the later run.
	CurrentRun RunMetadata `json:"current_run"`

	// Deltas holds the per-kind change in finding counts.
	Deltas map[string]int `json:"deltas"`

	// Direction is "improved", "worsened", or "unchanged" based on the
	// total issue count.
	Direction string `json:"direction"`
}

// RunMetadata contains summary counts of one run for comparison display.
type RunMetadata struct {
	// DateAudited is when the run was performed.
	DateAudited time.Time `json:"date_audited"`

	// TotalIssues is the run's total finding count.
	TotalIssues int `json:"total_issues"`

	// Counts holds the per-kind finding counts.
	Counts map[string]int `json:"counts"`
}

// runMetadata extracts comparison metadata from a stored report.
func runMetadata(report *model.Report) RunMetadata {
	return RunMetadata{
		DateAudited: report.DateAudited,
		TotalIssues: report.TotalIssues(),
		Counts: map[string]int{
			model.KindMissingURL.String():       len(report.MissingURL),
			model.KindMissingProtocol.String():  len(report.MissingProtocol),
			model.KindMissingRef.String():       len(report.MissingRef),
			model.KindDuplicateURL.String():     len(report.Duplicates),
			model.KindInvalidStructure.String(): len(report.InvalidStructure),
		},
	}
}

// compareReports compares two stored reports and generates a comparison result.
func compareReports(previous, current *model.Report) *ComparisonResult {
	result := &ComparisonResult{
		Dataset:     current.Dataset,
		PreviousRun: runMetadata(previous),
		CurrentRun:  runMetadata(current),
		Deltas:      make(map[string]int),
	}

	for kind, count := range result.CurrentRun.Counts {
		result.Deltas[kind] = count - result.PreviousRun.Counts[kind]
	}

	switch {
	case result.CurrentRun.TotalIssues < result.PreviousRun.TotalIssues:
		result.Direction = trendImproved
	case result.CurrentRun.TotalIssues > result.PreviousRun.TotalIssues:
		result.Direction = trendWorsened
	default:
		result.Direction = trendUnchanged
	}

	return result
}

// outputComparisonText outputs the comparison result in human-readable form.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Run Comparison: %s\n", result.Dataset)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nTrend: %s\n", formatTrend(result.Direction))

	fmt.Printf("\nPrevious run: %s\n", result.PreviousRun.DateAudited.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s\n", result.CurrentRun.DateAudited.Format("2006-01-02 15:04:05"))

	fmt.Println("\nIssue Summary:")
	fmt.Printf("  %-20s  %-10s  %-10s  %-10s\n", "Kind", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 56))

	for _, kind := range []model.IssueKind{
		model.KindMissingURL,
		model.KindMissingProtocol,
		model.KindMissingRef,
		model.KindDuplicateURL,
		model.KindInvalidStructure,
	} {
		key := kind.String()
		fmt.Printf("  %-20s  %-10d  %-10d  %-10s\n", key,
			result.PreviousRun.Counts[key],
			result.CurrentRun.Counts[key],
			formatDelta(result.Deltas[key]))
	}

	fmt.Println("  " + strings.Repeat("-", 56))
	fmt.Printf("  %-20s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousRun.TotalIssues,
		result.CurrentRun.TotalIssues,
		formatDelta(result.CurrentRun.TotalIssues-result.PreviousRun.TotalIssues))

	return nil
}

// formatTrend formats the issue trend direction for display.
func formatTrend(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer issues)"
	case trendWorsened:
		return "WORSENED (more issues)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// writeJSON writes a value as indented JSON to standard output.
func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
