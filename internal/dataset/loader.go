package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/riseofmachine/toolaudit/internal/model"
)

// splitExtension is the only file extension recognized in a split directory.
const splitExtension = ".json"

// primaryDocument mirrors the top-level shape of the primary dataset file.
// Tools is decoded lazily so a present-but-wrongly-typed value can be
// reported as malformed rather than silently ignored.
type primaryDocument struct {
	Tools json.RawMessage `json:"tools"`
}

// LoadPrimary reads the primary dataset file and returns its records as a
// flat stream, each tagged with its owning category and SourcePrimary.
// Records keep the loader's traversal order: categories in file order,
// records within a category in list order.
//
// Any failure here is fatal to the run: a missing or unreadable file, a
// document that does not parse, or a document without a "tools" array all
// return an error wrapping ErrMalformedDataset where the shape is at fault.
func LoadPrimary(path string) ([]model.ToolRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided dataset path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read primary dataset: %w", err)
	}

	var doc primaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDataset, err)
	}
	// A nil RawMessage means the key was absent; a literal null means the key
	// was present but carries no array. Both fail the required shape.
	if doc.Tools == nil {
		return nil, fmt.Errorf("%w: missing \"tools\" key", ErrMalformedDataset)
	}
	if string(doc.Tools) == "null" {
		return nil, fmt.Errorf("%w: \"tools\" is null, not an array of categories", ErrMalformedDataset)
	}

	var categories []model.Category
	if err := json.Unmarshal(doc.Tools, &categories); err != nil {
		return nil, fmt.Errorf("%w: \"tools\" is not an array of categories: %s", ErrMalformedDataset, err)
	}

	var records []model.ToolRecord
	for _, category := range categories {
		for _, tool := range category.Tools {
			tool.Category = category.Name
			tool.Source = model.SourcePrimary
			records = append(records, tool)
		}
	}

	return records, nil
}

// SplitFile is the result of loading one file from the split directory.
// Either Records is populated (the body was an array) or Encountered names
// the JSON type that was found instead.
type SplitFile struct {
	// Category is the file name with the .json extension stripped.
	Category string

	// Records holds the file's tool records tagged with the category and
	// SourceSplit. Nil when the body was not an array.
	Records []model.ToolRecord

	// Encountered is the JSON type name found where an array was expected
	// ("object", "string", ...), or "invalid JSON" when the file did not
	// parse at all. Empty when the file loaded cleanly.
	Encountered string
}

// LoadSplitDir loads every recognized file in the split directory in
// directory order. A missing directory is not an error: the split dataset
// is optional and its absence simply yields no split records.
//
// Per-file malformation never aborts the load. A file whose body is not a
// JSON array is returned with Encountered set so the auditor can record an
// invalid_structure finding and keep going.
func LoadSplitDir(dir string) ([]SplitFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read split directory: %w", err)
	}

	var files []SplitFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), splitExtension) {
			continue
		}
		files = append(files, loadSplitFile(dir, entry.Name()))
	}

	return files, nil
}

// loadSplitFile loads a single split file. All malformation is folded into
// the returned SplitFile rather than an error.
func loadSplitFile(dir, name string) SplitFile {
	sf := SplitFile{Category: CategoryFromFileName(name)}

	data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // Listing came from the configured directory
	if err != nil {
		sf.Encountered = "unreadable file"
		return sf
	}

	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		sf.Encountered = "invalid JSON"
		return sf
	}

	raw, ok := body.([]any)
	if !ok {
		sf.Encountered = jsonTypeName(body)
		return sf
	}

	// Decode again into typed records now that the shape is known good.
	// A zero-length array is a valid category with no tools.
	var records []model.ToolRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			sf.Encountered = "array of non-objects"
			return sf
		}
		for i := range records {
			records[i].Category = sf.Category
			records[i].Source = model.SourceSplit
		}
	}
	sf.Records = records

	return sf
}

// CategoryFromFileName derives the category name for a split file:
// the base name with the .json extension stripped. No case folding or other
// normalization is applied; the file name is the category identifier.
func CategoryFromFileName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), splitExtension)
}

// jsonTypeName names the runtime type of a decoded JSON value the way the
// format's own vocabulary does.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
