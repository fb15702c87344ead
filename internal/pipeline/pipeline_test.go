package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/riseofmachine/toolaudit/internal/audit"
	"github.com/riseofmachine/toolaudit/internal/dataset"
	"github.com/riseofmachine/toolaudit/internal/model"
)

// writePrimary writes a primary dataset file and returns its path.
func writePrimary(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "tools.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write primary dataset: %v", err)
	}
	return path
}

// writeSplit writes one split file into dir.
func writeSplit(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write split file: %v", err)
	}
}

const validPrimary = `{
  "tools": [
    {
      "category": "chat",
      "content": [
        {"title": "Alpha", "slug": "alpha", "url": "https://alpha.example/?ref=riseofmachine.com"}
      ]
    }
  ]
}`

// recordingStep records whether it ran, for ordering assertions.
type recordingStep struct {
	name string
	log  *[]string
	err  error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Do(_ context.Context, _ *audit.Auditor) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

// TestPipelineExecute tests step sequencing and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var log []string
		p := New()
		p.AddSteps(
			&recordingStep{name: "first", log: &log},
			&recordingStep{name: "second", log: &log},
		)

		a := audit.New("test.json")
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(log) != 2 || log[0] != "first" || log[1] != "second" {
			t.Errorf("steps ran as %v, want [first second]", log)
		}
	})

	t.Run("stops on first fatal error", func(t *testing.T) {
		t.Parallel()

		var log []string
		stepErr := errors.New("load failed")
		p := New()
		p.AddSteps(
			&recordingStep{name: "first", log: &log, err: stepErr},
			&recordingStep{name: "second", log: &log},
		)

		a := audit.New("test.json")
		err := p.Execute(context.Background(), a)
		if !errors.Is(err, stepErr) {
			t.Fatalf("error = %v, want %v", err, stepErr)
		}
		if len(log) != 1 {
			t.Errorf("expected only the failing step to run, got %v", log)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		var log []string
		p := New()
		p.AddStep(&recordingStep{name: "never", log: &log})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a := audit.New("test.json")
		if err := p.Execute(ctx, a); !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if len(log) != 0 {
			t.Errorf("expected no steps to run after cancellation, got %v", log)
		}
	})
}

// TestDatasetPipeline tests the assembled standard pipeline end to end.
func TestDatasetPipeline(t *testing.T) {
	t.Parallel()

	t.Run("primary and split feed one pass", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		primary := writePrimary(t, dir, validPrimary)

		splitDir := filepath.Join(dir, "categories")
		if err := os.Mkdir(splitDir, 0750); err != nil {
			t.Fatalf("failed to create split directory: %v", err)
		}
		writeSplit(t, splitDir, "chat.json",
			`[{"title": "Alpha", "slug": "alpha", "url": "https://alpha.example/?ref=riseofmachine.com"}]`)

		a := audit.New(primary)
		p := DatasetPipeline(primary, splitDir)
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		report := a.Finalize()
		if report.PrimaryCount != 1 {
			t.Errorf("PrimaryCount = %d, want 1", report.PrimaryCount)
		}
		if report.SplitCount != 1 {
			t.Errorf("SplitCount = %d, want 1", report.SplitCount)
		}
		if !report.Passed() {
			t.Errorf("expected clean dataset to pass, got %d issues", report.TotalIssues())
		}
	})

	t.Run("fatal primary load aborts the pass", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		primary := writePrimary(t, dir, `{"categories": []}`)

		a := audit.New(primary)
		p := DatasetPipeline(primary, "")
		err := p.Execute(context.Background(), a)
		if !errors.Is(err, dataset.ErrMalformedDataset) {
			t.Fatalf("error = %v, want ErrMalformedDataset", err)
		}
	})

	t.Run("malformed split file becomes a finding not an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		primary := writePrimary(t, dir, validPrimary)

		splitDir := filepath.Join(dir, "categories")
		if err := os.Mkdir(splitDir, 0750); err != nil {
			t.Fatalf("failed to create split directory: %v", err)
		}
		writeSplit(t, splitDir, "broken.json", `{"not": "an array"}`)

		a := audit.New(primary)
		p := DatasetPipeline(primary, splitDir)
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		report := a.Finalize()
		if len(report.InvalidStructure) != 1 {
			t.Fatalf("InvalidStructure = %d findings, want 1", len(report.InvalidStructure))
		}
		if report.InvalidStructure[0].Encountered != "object" {
			t.Errorf("Encountered = %q, want %q", report.InvalidStructure[0].Encountered, "object")
		}
	})

	t.Run("missing split directory is skipped", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		primary := writePrimary(t, dir, validPrimary)

		a := audit.New(primary)
		p := DatasetPipeline(primary, filepath.Join(dir, "does-not-exist"))
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report := a.Finalize(); report.SplitCount != 0 {
			t.Errorf("SplitCount = %d, want 0", report.SplitCount)
		}
	})
}

// TestBatchProcessor tests concurrent multi-dataset validation.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("reports keep target order", func(t *testing.T) {
		t.Parallel()

		var targets []Target
		for range 3 {
			dir := t.TempDir()
			targets = append(targets, Target{Dataset: writePrimary(t, dir, validPrimary)})
		}

		bp := NewBatchProcessor(func(target Target) *audit.Auditor {
			return audit.New(target.Dataset)
		}, WithConcurrency(2))

		reports, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(reports) != len(targets) {
			t.Fatalf("got %d reports, want %d", len(reports), len(targets))
		}
		for i, report := range reports {
			if report == nil {
				t.Fatalf("report %d is nil", i)
			}
			if report.Dataset != targets[i].Dataset {
				t.Errorf("report %d is for %q, want %q", i, report.Dataset, targets[i].Dataset)
			}
		}
	})

	t.Run("callback sees every completed report", func(t *testing.T) {
		t.Parallel()

		var targets []Target
		for range 2 {
			dir := t.TempDir()
			targets = append(targets, Target{Dataset: writePrimary(t, dir, validPrimary)})
		}

		bp := NewBatchProcessor(func(target Target) *audit.Auditor {
			return audit.New(target.Dataset)
		})

		seen := make(map[int]bool)
		err := bp.ProcessBatchWithCallback(context.Background(), targets, func(report *model.Report, index int) {
			if report == nil {
				t.Errorf("callback received nil report for index %d", index)
			}
			seen[index] = true
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := range targets {
			if !seen[i] {
				t.Errorf("callback never fired for target %d", i)
			}
		}
	})

	t.Run("fatal load surfaces as error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		targets := []Target{
			{Dataset: writePrimary(t, dir, `"just a string"`)},
		}

		bp := NewBatchProcessor(func(target Target) *audit.Auditor {
			return audit.New(target.Dataset)
		})

		if _, err := bp.ProcessBatch(context.Background(), targets); !errors.Is(err, dataset.ErrMalformedDataset) {
			t.Fatalf("error = %v, want ErrMalformedDataset", err)
		}
	})
}
