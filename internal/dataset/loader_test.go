package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/riseofmachine/toolaudit/internal/model"
)

// writeFile creates a file with the given content under dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoadPrimary tests loading of the monolithic dataset file.
func TestLoadPrimary(t *testing.T) {
	t.Parallel()

	t.Run("flattens categories in file order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "tools.json", `{
			"tools": [
				{"category": "Chat", "content": [
					{"title": "Alpha", "slug": "alpha", "url": "https://alpha.example/?ref=riseofmachine.com"},
					{"title": "Beta"}
				]},
				{"category": "Image", "content": [
					{"title": "Gamma", "url": "https://gamma.example/?ref=riseofmachine.com"}
				]}
			]
		}`)

		records, err := LoadPrimary(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(records) != 3 {
			t.Fatalf("len(records) = %d, want 3", len(records))
		}

		wantTitles := []string{"Alpha", "Beta", "Gamma"}
		wantCategories := []string{"Chat", "Chat", "Image"}
		for i, rec := range records {
			if rec.Title != wantTitles[i] {
				t.Errorf("records[%d].Title = %q, want %q", i, rec.Title, wantTitles[i])
			}
			if rec.Category != wantCategories[i] {
				t.Errorf("records[%d].Category = %q, want %q", i, rec.Category, wantCategories[i])
			}
			if rec.Source != model.SourcePrimary {
				t.Errorf("records[%d].Source = %q, want %q", i, rec.Source, model.SourcePrimary)
			}
		}

		// Absent fields stay empty rather than erroring.
		if records[1].URL != "" || records[1].Slug != "" {
			t.Errorf("expected absent url/slug to stay empty, got %+v", records[1])
		}
	})

	t.Run("missing tools key is malformed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "tools.json", `{"items": []}`)

		_, err := LoadPrimary(path)
		if !errors.Is(err, ErrMalformedDataset) {
			t.Errorf("expected ErrMalformedDataset, got %v", err)
		}
	})

	t.Run("null tools key is malformed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "tools.json", `{"tools": null}`)

		records, err := LoadPrimary(path)
		if !errors.Is(err, ErrMalformedDataset) {
			t.Errorf("expected ErrMalformedDataset, got %v", err)
		}
		if records != nil {
			t.Errorf("expected no records for null tools, got %d", len(records))
		}
	})

	t.Run("tools not an array is malformed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "tools.json", `{"tools": {"category": "Chat"}}`)

		_, err := LoadPrimary(path)
		if !errors.Is(err, ErrMalformedDataset) {
			t.Errorf("expected ErrMalformedDataset, got %v", err)
		}
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "tools.json", `{"tools": [`)

		_, err := LoadPrimary(path)
		if !errors.Is(err, ErrMalformedDataset) {
			t.Errorf("expected ErrMalformedDataset, got %v", err)
		}
	})

	t.Run("missing file is an error but not malformed", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPrimary(filepath.Join(t.TempDir(), "absent.json"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if errors.Is(err, ErrMalformedDataset) {
			t.Error("missing file should be an I/O error, not a shape error")
		}
	})
}

// TestLoadSplitDir tests the tolerant per-category loader.
func TestLoadSplitDir(t *testing.T) {
	t.Parallel()

	t.Run("loads arrays and reports non-arrays", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "chat.json", `[{"title": "Alpha", "url": "https://alpha.example"}]`)
		writeFile(t, dir, "image.json", `{"not": "array"}`)
		writeFile(t, dir, "video.json", `[]`)
		writeFile(t, dir, "notes.txt", `ignore me`)

		files, err := LoadSplitDir(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(files) != 3 {
			t.Fatalf("len(files) = %d, want 3", len(files))
		}

		// os.ReadDir returns entries sorted by name.
		if files[0].Category != "chat" || files[1].Category != "image" || files[2].Category != "video" {
			t.Errorf("unexpected categories: %q %q %q", files[0].Category, files[1].Category, files[2].Category)
		}

		if len(files[0].Records) != 1 {
			t.Fatalf("chat: len(Records) = %d, want 1", len(files[0].Records))
		}
		if files[0].Records[0].Source != model.SourceSplit {
			t.Errorf("chat record source = %q, want %q", files[0].Records[0].Source, model.SourceSplit)
		}
		if files[0].Records[0].Category != "chat" {
			t.Errorf("chat record category = %q, want chat", files[0].Records[0].Category)
		}

		if files[1].Encountered != "object" {
			t.Errorf("image: Encountered = %q, want object", files[1].Encountered)
		}

		// Empty array is a valid category with zero tools, not an anomaly.
		if files[2].Encountered != "" {
			t.Errorf("video: Encountered = %q, want empty", files[2].Encountered)
		}
	})

	t.Run("reports JSON type names", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.json", `"just a string"`)
		writeFile(t, dir, "b.json", `42`)
		writeFile(t, dir, "c.json", `null`)
		writeFile(t, dir, "d.json", `true`)
		writeFile(t, dir, "e.json", `{{{`)

		files, err := LoadSplitDir(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"string", "number", "null", "boolean", "invalid JSON"}
		if len(files) != len(want) {
			t.Fatalf("len(files) = %d, want %d", len(files), len(want))
		}
		for i, w := range want {
			if files[i].Encountered != w {
				t.Errorf("files[%d].Encountered = %q, want %q", i, files[i].Encountered, w)
			}
		}
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		t.Parallel()

		files, err := LoadSplitDir(filepath.Join(t.TempDir(), "absent"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if files != nil {
			t.Errorf("expected nil files for missing directory, got %d", len(files))
		}
	})
}

// TestCategoryFromFileName tests the category derivation rule.
func TestCategoryFromFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"chat.json", "chat"},
		{"Code-Assistants.json", "Code-Assistants"},
		{"nested/dir/video.json", "video"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		if got := CategoryFromFileName(tt.name); got != tt.want {
			t.Errorf("CategoryFromFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
