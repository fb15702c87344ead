package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riseofmachine/toolaudit/internal/audit"
	"github.com/riseofmachine/toolaudit/internal/dataset"
)

// LoadPrimaryStep reads the primary dataset and feeds every record into the
// auditor in traversal order.
//
// Design decision: Loading and rule evaluation are separate concerns
// (dataset vs audit packages), but they meet in one step because the
// record stream is consumed exactly once; materializing it between two
// steps would buy nothing.
type LoadPrimaryStep struct {
	// path is the primary dataset file.
	path string

	// logger for structured logging.
	logger *slog.Logger
}

// LoadPrimaryStepOption configures a LoadPrimaryStep.
type LoadPrimaryStepOption func(*LoadPrimaryStep)

// WithPrimaryLogger sets a custom logger for the primary load step.
func WithPrimaryLogger(logger *slog.Logger) LoadPrimaryStepOption {
	return func(s *LoadPrimaryStep) {
		s.logger = logger
	}
}

// NewLoadPrimaryStep creates the primary dataset loading step.
func NewLoadPrimaryStep(path string, opts ...LoadPrimaryStepOption) *LoadPrimaryStep {
	s := &LoadPrimaryStep{
		path:   path,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadPrimaryStep) Name() string {
	return "load_primary"
}

// Do executes the primary load. Any error here is fatal: without a
// well-formed primary dataset there is nothing to validate.
func (s *LoadPrimaryStep) Do(_ context.Context, a *audit.Auditor) error {
	records, err := dataset.LoadPrimary(s.path)
	if err != nil {
		return fmt.Errorf("failed to load primary dataset %s: %w", s.path, err)
	}

	s.logger.Debug("primary dataset loaded", "path", s.path, "records", len(records))

	for _, rec := range records {
		a.Inspect(rec)
	}

	return nil
}

// LoadSplitStep reads the split directory and feeds every file into the
// auditor: records when the body is an array, a structural finding
// otherwise. Per-file malformation is tolerated so one bad file does not
// abort the run.
type LoadSplitStep struct {
	// dir is the split file directory.
	dir string

	// logger for structured logging.
	logger *slog.Logger
}

// LoadSplitStepOption configures a LoadSplitStep.
type LoadSplitStepOption func(*LoadSplitStep)

// WithSplitLogger sets a custom logger for the split load step.
func WithSplitLogger(logger *slog.Logger) LoadSplitStepOption {
	return func(s *LoadSplitStep) {
		s.logger = logger
	}
}

// NewLoadSplitStep creates the split directory loading step.
func NewLoadSplitStep(dir string, opts ...LoadSplitStepOption) *LoadSplitStep {
	s := &LoadSplitStep{
		dir:    dir,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadSplitStep) Name() string {
	return "load_split"
}

// Do executes the split load. A missing directory is skipped silently;
// the split dataset is optional.
func (s *LoadSplitStep) Do(_ context.Context, a *audit.Auditor) error {
	files, err := dataset.LoadSplitDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to load split directory %s: %w", s.dir, err)
	}

	s.logger.Debug("split directory loaded", "dir", s.dir, "files", len(files))

	for _, sf := range files {
		a.InspectSplitFile(sf)
	}

	return nil
}
