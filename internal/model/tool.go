package model

// Source identifies which dataset representation a tool record came from.
// The primary dataset is the single monolithic tools file; the split dataset
// is the per-category-file representation of the same conceptual data.
type Source string

const (
	// SourcePrimary marks records read from the monolithic tools file.
	SourcePrimary Source = "primary"

	// SourceSplit marks records read from a per-category split file.
	SourceSplit Source = "split"
)

// ToolRecord is one entry in the tool directory.
//
// Slug and URL may be absent in the raw data: the slug is generated by the
// slugify maintenance command, and a missing or malformed URL is exactly what
// validation exists to report. Both are therefore plain strings where the
// empty value means "absent", and every consumer must treat them that way.
type ToolRecord struct {
	// Title is the display name of the tool.
	Title string `json:"title"`

	// Slug is the URL-safe identifier. Empty before the slugify command
	// has run on the dataset.
	Slug string `json:"slug,omitempty"`

	// URL is the outbound link. May be empty or malformed; validation
	// reports on it but never corrects it.
	URL string `json:"url,omitempty"`

	// Category is the owning category name. It is not part of the record
	// body on disk: the loader derives it from the enclosing category
	// object (primary) or the file name (split).
	Category string `json:"-"`

	// Source tags which dataset representation the record came from.
	Source Source `json:"-"`
}

// Category is a named grouping of tool records as stored in the
// primary dataset.
type Category struct {
	// Name is the category display name.
	Name string `json:"category"`

	// Tools holds the category's records in file order.
	Tools []ToolRecord `json:"content"`
}

// ToolRef identifies a tool record inside a finding without carrying the
// full record. It is the owner entry registered in the URL index.
type ToolRef struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Slug     string `json:"slug,omitempty"`
}

// Ref returns the identifying fields of the record as a ToolRef.
func (t ToolRecord) Ref() ToolRef {
	return ToolRef{
		Title:    t.Title,
		Category: t.Category,
		Slug:     t.Slug,
	}
}
