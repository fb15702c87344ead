package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/riseofmachine/toolaudit/internal/audit"
	"github.com/riseofmachine/toolaudit/internal/config"
	"github.com/riseofmachine/toolaudit/internal/database"
	"github.com/riseofmachine/toolaudit/internal/model"
	"github.com/riseofmachine/toolaudit/internal/pipeline"
	"github.com/riseofmachine/toolaudit/internal/report"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [dataset-file...]",
		Short: "Validate the tool dataset for link and structure issues",
		Long: `Validate runs the integrity rules over the tool dataset.

It loads the primary dataset file, optionally the per-category split files,
and checks every record for:
- Missing or empty URLs
- URLs without an accepted scheme (http:// or https://)
- URLs without the attribution marker (?ref=riseofmachine.com)
- URLs declared by more than one record
- Split files whose body is not an array of records

Examples:
  # Validate the default dataset layout (data/tools.json + data/categories)
  toolaudit validate

  # Validate a specific dataset file without split files
  toolaudit validate --split-dir "" exports/tools.json

  # Validate several dataset roots concurrently
  toolaudit validate main/tools.json staging/tools.json

  # Output a JSON report to a file
  toolaudit validate --json -o reports/audit.json

  # Use a custom configuration file
  toolaudit validate -c myconfig.yaml

Configuration file (.toolaudit) example:
  dataset: data/tools.json
  splitDir: data/categories
  refMarker: "?ref=riseofmachine.com"
  schemes:
    - "http://"
    - "https://"`,
		Args: cobra.ArbitraryArgs,
		RunE: runValidateCmd,
	}

	// Dataset location flags
	cmd.Flags().StringP("split-dir", "s", config.DefaultSplitDir,
		"Directory of per-category split files (empty string disables split validation)")

	// Rule parameter flags
	cmd.Flags().String("ref-marker", config.DefaultRefMarker,
		"Attribution marker every tool URL must carry")

	// Batch validation flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent passes when validating multiple dataset files")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .toolaudit in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runValidate(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Flags win over the file, which wins over defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load settings from the config file before flags so explicit flags win.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("split-dir") {
		cfg.SplitDir, err = cmd.Flags().GetString("split-dir")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("ref-marker") {
		cfg.RefMarker, err = cmd.Flags().GetString("ref-marker")
		if err != nil {
			return nil, err
		}
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noSave

	// Positional arguments override the dataset from file or defaults.
	if len(args) > 0 {
		cfg.Datasets = args
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// runValidate executes the validation pass or passes.
func runValidate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting validation",
		"datasets", cfg.Datasets,
		"splitDir", cfg.SplitDir,
		"batchSize", cfg.BatchSize,
		"saveHistory", cfg.SaveHistory,
	)

	// Open database connection if history saving is enabled
	var db *database.AuditDB
	if cfg.SaveHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	if len(cfg.Datasets) > 1 && cfg.BatchSize > 1 {
		return runBatchValidate(ctx, cfg, db, logger)
	}

	return runSequentialValidate(ctx, cfg, db, logger)
}

// newAuditor creates an auditor carrying the run's rule parameters.
func newAuditor(cfg *config.Config, datasetPath string, logger *slog.Logger) *audit.Auditor {
	return audit.New(datasetPath,
		audit.WithRefMarker(cfg.RefMarker),
		audit.WithSchemes(cfg.Schemes),
		audit.WithLogger(logger),
	)
}

// runSequentialValidate validates dataset roots one at a time.
func runSequentialValidate(ctx context.Context, cfg *config.Config, db *database.AuditDB, logger *slog.Logger) error {
	failed := false

	for _, datasetPath := range cfg.Datasets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		a := newAuditor(cfg, datasetPath, logger)
		p := pipeline.DatasetPipeline(datasetPath, cfg.SplitDir, pipeline.WithLogger(logger))

		if err := p.Execute(ctx, a); err != nil {
			return err
		}

		rep := a.Finalize()

		if err := outputReport(cfg, rep); err != nil {
			return err
		}
		if err := saveReport(ctx, db, rep, logger); err != nil {
			logger.Error("failed to save report", "dataset", datasetPath, "error", err)
		}

		if !rep.Passed() {
			failed = true
		}
	}

	if failed {
		return audit.ErrIssuesFound
	}
	return nil
}

// runBatchValidate validates multiple dataset roots concurrently using
// BatchProcessor. Reports stream to output as passes complete; the callback
// runs under the processor's lock so outputs never interleave.
func runBatchValidate(ctx context.Context, cfg *config.Config, db *database.AuditDB, logger *slog.Logger) error {
	fmt.Printf("Validating %d datasets (concurrency: %d)...\n\n",
		len(cfg.Datasets), cfg.BatchSize)

	startTime := time.Now()

	targets := make([]pipeline.Target, 0, len(cfg.Datasets))
	for _, datasetPath := range cfg.Datasets {
		targets = append(targets, pipeline.Target{Dataset: datasetPath, SplitDir: cfg.SplitDir})
	}

	bp := pipeline.NewBatchProcessor(
		func(target pipeline.Target) *audit.Auditor {
			return newAuditor(cfg, target.Dataset, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	failed := false
	err := bp.ProcessBatchWithCallback(ctx, targets, func(rep *model.Report, index int) {
		fmt.Printf("[%d/%d] Validated: %s\n", index+1, len(targets), rep.Dataset)

		if err := outputReport(cfg, rep); err != nil {
			logger.Error("report failed", "dataset", rep.Dataset, "error", err)
		}
		if err := saveReport(ctx, db, rep, logger); err != nil {
			logger.Error("failed to save report", "dataset", rep.Dataset, "error", err)
		}

		if !rep.Passed() {
			failed = true
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nBatch validation completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if failed {
		return audit.ErrIssuesFound
	}
	return nil
}

// outputReport writes the report in the requested format to the configured
// destination.
func outputReport(cfg *config.Config, rep *model.Report) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(rep)
	return err
}

// saveReport stores the report in the history database if enabled.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.AuditDB, rep *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveReport(ctx, rep)
	if err != nil {
		return err
	}

	logger.Info("report saved to history", "dataset", rep.Dataset, "run_id", id)
	return nil
}
