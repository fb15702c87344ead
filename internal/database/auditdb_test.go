package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/riseofmachine/toolaudit/internal/model"
)

// openTestDB creates an AuditDB in a temporary directory.
func openTestDB(t *testing.T) *AuditDB {
	t.Helper()

	adb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := adb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return adb
}

// failingReport creates a report with one finding of each kind.
func failingReport(dataset string) *model.Report {
	r := model.NewReport(dataset)
	r.PrimaryCount = 4
	r.UniqueURLs = 2

	r.AddIssue(model.KindMissingURL, model.Issue{Title: "NoLink", Category: "chat"})
	r.AddIssue(model.KindMissingRef, model.Issue{Title: "NoRef", Category: "chat", URL: "https://noref.example"})
	r.Duplicates = []model.DuplicateGroup{
		{
			URL: "https://dup.example/?ref=riseofmachine.com",
			Owners: []model.ToolRef{
				{Title: "First", Category: "chat"},
				{Title: "Second", Category: "image"},
			},
		},
	}
	return r
}

// TestOpen tests database creation semantics.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file when allowed", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "data")
		adb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer adb.Close() //nolint:errcheck

		if adb.Path() != filepath.Join(dir, "toolaudit.db") {
			t.Errorf("Path() = %q, want file under %q", adb.Path(), dir)
		}
	})

	t.Run("refuses missing database when creation disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

// TestSaveAndGetRun tests the report round trip.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	adb := openTestDB(t)
	ctx := context.Background()

	saved := failingReport("data/tools.json")
	id, err := adb.SaveReport(ctx, saved)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if id <= 0 {
		t.Fatalf("run ID = %d, want positive", id)
	}

	loaded, err := adb.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected stored report, got nil")
	}

	if loaded.Dataset != saved.Dataset {
		t.Errorf("Dataset = %q, want %q", loaded.Dataset, saved.Dataset)
	}
	if loaded.TotalIssues() != saved.TotalIssues() {
		t.Errorf("TotalIssues = %d, want %d", loaded.TotalIssues(), saved.TotalIssues())
	}
	if len(loaded.Duplicates) != 1 || len(loaded.Duplicates[0].Owners) != 2 {
		t.Errorf("duplicate groups did not survive the round trip: %+v", loaded.Duplicates)
	}
}

// TestGetRunNotFound tests the nil-without-error contract.
func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	adb := openTestDB(t)

	report, err := adb.GetRun(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != nil {
		t.Errorf("expected nil for unknown run, got %+v", report)
	}
}

// TestListRuns tests history listing with filters.
func TestListRuns(t *testing.T) {
	t.Parallel()

	adb := openTestDB(t)
	ctx := context.Background()

	if _, err := adb.SaveReport(ctx, failingReport("data/tools.json")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if _, err := adb.SaveReport(ctx, model.NewReport("data/tools.json")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if _, err := adb.SaveReport(ctx, model.NewReport("other/tools.json")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	t.Run("filters by dataset most recent first", func(t *testing.T) {
		runs, err := adb.ListRuns(ctx, "data/tools.json", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("got %d runs, want 2", len(runs))
		}
		// Second save was the passing report.
		if !runs[0].Passed {
			t.Error("expected most recent run first")
		}
		if runs[1].IssueSummary[model.KindDuplicateURL.String()] != 1 {
			t.Errorf("issue summary = %v, want 1 duplicate group", runs[1].IssueSummary)
		}
		if runs[0].Timestamp.IsZero() {
			t.Error("expected parsed timestamp")
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		runs, err := adb.ListRuns(ctx, "", 1)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("got %d runs, want 1", len(runs))
		}
	})
}

// TestLatestRuns tests fetching recent full reports for comparison.
func TestLatestRuns(t *testing.T) {
	t.Parallel()

	adb := openTestDB(t)
	ctx := context.Background()

	first := failingReport("data/tools.json")
	first.DateAudited = time.Now().Add(-time.Hour)
	if _, err := adb.SaveReport(ctx, first); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if _, err := adb.SaveReport(ctx, model.NewReport("data/tools.json")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	reports, err := adb.LatestRuns(ctx, "data/tools.json", 2)
	if err != nil {
		t.Fatalf("failed to get latest runs: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if !reports[0].Passed() || reports[1].Passed() {
		t.Error("expected newest (passing) report first, failing report second")
	}
}

// TestListDatasets tests distinct dataset enumeration.
func TestListDatasets(t *testing.T) {
	t.Parallel()

	adb := openTestDB(t)
	ctx := context.Background()

	for _, dataset := range []string{"b/tools.json", "a/tools.json", "b/tools.json"} {
		if _, err := adb.SaveReport(ctx, model.NewReport(dataset)); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	datasets, err := adb.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("failed to list datasets: %v", err)
	}
	want := []string{"a/tools.json", "b/tools.json"}
	if len(datasets) != len(want) {
		t.Fatalf("got %d datasets, want %d", len(datasets), len(want))
	}
	for i := range want {
		if datasets[i] != want[i] {
			t.Errorf("datasets[%d] = %q, want %q", i, datasets[i], want[i])
		}
	}
}
