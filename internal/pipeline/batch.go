package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/riseofmachine/toolaudit/internal/audit"
	"github.com/riseofmachine/toolaudit/internal/model"
	"golang.org/x/sync/errgroup"
)

// Target is one dataset root to validate: the primary dataset file and its
// optional split directory.
type Target struct {
	// Dataset is the primary dataset file path.
	Dataset string

	// SplitDir is the split file directory, or empty to skip.
	SplitDir string
}

// AuditorFactory creates the auditor for one target, carrying the run's
// rule parameters. A fresh auditor per target keeps passes independent.
type AuditorFactory func(target Target) *audit.Auditor

// BatchProcessor handles concurrent validation of multiple dataset roots.
// It uses errgroup to manage goroutines and respect concurrency limits.
// Each dataset still gets its own single-threaded pass; only independent
// passes run concurrently.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because it keeps the Pipeline focused on
// single-pass execution and provides cleaner separation of concerns.
type BatchProcessor struct {
	// auditorFactory creates a fresh auditor per target.
	auditorFactory AuditorFactory

	// concurrency is the maximum number of concurrent passes.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports in target order.
	// Access is synchronized via mutex.
	results []*model.Report
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent passes.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The auditorFactory is called for each target to create a fresh auditor.
// This ensures aggregation state never leaks between passes.
func NewBatchProcessor(auditorFactory AuditorFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		auditorFactory: auditorFactory,
		concurrency:    4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch validates multiple dataset roots concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns the reports in target order. The error return indicates a fatal
// load failure or cancellation; findings are not errors at this level.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []Target) ([]*model.Report, error) {
	err := bp.ProcessBatchWithCallback(ctx, targets, nil)
	return bp.results, err
}

// ProcessBatchWithCallback validates multiple dataset roots concurrently,
// invoking the callback as each report completes. The callback runs under
// the processor's lock, so it may write to shared output without further
// synchronization. A nil callback is allowed.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, targets []Target, callback func(report *model.Report, index int)) error {
	bp.logger.Info("starting batch validation",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.Report, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("validating dataset",
				"dataset", target.Dataset,
				"index", i+1,
				"total", len(targets),
			)

			a := bp.auditorFactory(target)
			p := DatasetPipeline(target.Dataset, target.SplitDir, WithLogger(bp.logger))

			if err := p.Execute(ctx, a); err != nil {
				return err
			}

			report := a.Finalize()

			bp.mu.Lock()
			bp.results[i] = report
			if callback != nil {
				callback(report, i)
			}
			bp.mu.Unlock()

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch validation complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return err
}

// Results returns the reports collected so far, in target order.
// Entries for failed or unfinished targets are nil.
func (bp *BatchProcessor) Results() []*model.Report {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	out := make([]*model.Report, len(bp.results))
	copy(out, bp.results)
	return out
}
