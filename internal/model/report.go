package model

import "time"

// Report is the aggregated result of one validation pass.
// It is constructed fresh for every run, filled by the auditor, and then
// rendered by the report writers and stored by the history database.
//
// Design decision: We use one flat struct with an explicit slice per issue
// bucket rather than a map keyed by IssueKind. The bucket set is fixed, the
// rendering order is part of the report contract, and a flat struct
// serializes to stable JSON for storage and comparison.
type Report struct {
	// Dataset is the path of the audited primary dataset file.
	Dataset string `json:"dataset"`

	// DateAudited is when the validation pass started.
	DateAudited time.Time `json:"date_audited"`

	// PrimaryCount is the number of records read from the primary dataset.
	PrimaryCount int `json:"primary_count"`

	// SplitCount is the number of records read from split category files.
	SplitCount int `json:"split_count"`

	// UniqueURLs is the number of distinct trimmed URLs registered in the
	// duplicate index. Only primary records feed the index.
	UniqueURLs int `json:"unique_urls"`

	// MissingURL holds records whose trimmed URL is absent or empty.
	MissingURL []Issue `json:"missing_url,omitempty"`

	// MissingProtocol holds records whose URL lacks an accepted scheme.
	MissingProtocol []Issue `json:"missing_protocol,omitempty"`

	// MissingRef holds records whose URL lacks the attribution marker.
	MissingRef []Issue `json:"missing_ref,omitempty"`

	// Duplicates holds URL groups declared by more than one primary
	// record, sorted descending by occurrence count.
	Duplicates []DuplicateGroup `json:"duplicates,omitempty"`

	// InvalidStructure holds split files whose body was not an array.
	InvalidStructure []Issue `json:"invalid_structure,omitempty"`
}

// NewReport creates an empty report for the given dataset path.
func NewReport(dataset string) *Report {
	return &Report{
		Dataset:     dataset,
		DateAudited: time.Now(),
	}
}

// Bucket pairs an issue kind with its findings for ordered rendering.
type Bucket struct {
	Kind   IssueKind
	Issues []Issue
}

// Buckets returns the per-record issue buckets in their fixed rendering
// order. Duplicate groups are not included; they carry extra structure and
// are rendered from the Duplicates field between missing_ref and
// invalid_structure.
func (r *Report) Buckets() []Bucket {
	return []Bucket{
		{Kind: KindMissingURL, Issues: r.MissingURL},
		{Kind: KindMissingProtocol, Issues: r.MissingProtocol},
		{Kind: KindMissingRef, Issues: r.MissingRef},
		{Kind: KindInvalidStructure, Issues: r.InvalidStructure},
	}
}

// AddIssue appends a finding to the bucket for its kind.
// KindDuplicateURL is derived by the auditor after traversal and cannot be
// added through this method; such calls are ignored.
func (r *Report) AddIssue(kind IssueKind, issue Issue) {
	switch kind {
	case KindMissingURL:
		r.MissingURL = append(r.MissingURL, issue)
	case KindMissingProtocol:
		r.MissingProtocol = append(r.MissingProtocol, issue)
	case KindMissingRef:
		r.MissingRef = append(r.MissingRef, issue)
	case KindInvalidStructure:
		r.InvalidStructure = append(r.InvalidStructure, issue)
	case KindDuplicateURL:
		// Derived, not inserted.
	}
}

// TotalRecords returns the number of records consumed from both sources.
func (r *Report) TotalRecords() int {
	return r.PrimaryCount + r.SplitCount
}

// TotalIssues returns the report's summary count: the sum of all bucket
// sizes plus the number of duplicate groups (not duplicate records).
func (r *Report) TotalIssues() int {
	return len(r.MissingURL) +
		len(r.MissingProtocol) +
		len(r.MissingRef) +
		len(r.Duplicates) +
		len(r.InvalidStructure)
}

// Passed reports the run verdict: true iff every issue bucket is empty and
// the duplicate set is empty.
func (r *Report) Passed() bool {
	return r.TotalIssues() == 0
}
