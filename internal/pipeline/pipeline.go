package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/riseofmachine/toolaudit/internal/audit"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each feeding the shared auditor.
//
// Design decision: We use an interface rather than function types because
// it allows steps to carry configuration state and provides a Name() method
// for logging and debugging.
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the auditor accumulating the pass.
	// Returns an error only for fatal conditions; tolerated anomalies
	// are recorded as findings and return nil.
	Do(ctx context.Context, a *audit.Auditor) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence against the auditor.
// It respects context cancellation between steps and stops on the first
// fatal error: a failed primary load means there is nothing left to audit,
// so there is no continue-on-error mode at the step level. Tolerated
// anomalies never surface here; steps fold them into the auditor.
func (p *Pipeline) Execute(ctx context.Context, a *audit.Auditor) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		start := time.Now()
		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, a); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	}

	return nil
}

// DatasetPipeline assembles the standard validation pipeline for one
// dataset root: primary load, then split load. An empty splitDir skips
// split validation.
func DatasetPipeline(datasetPath, splitDir string, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddStep(NewLoadPrimaryStep(datasetPath))
	if splitDir != "" {
		p.AddStep(NewLoadSplitStep(splitDir))
	}
	return p
}
