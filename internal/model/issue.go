package model

// IssueKind identifies the kind of a validation finding.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and to make the fixed rendering order of the
// report sections explicit. The String() method provides the stable
// machine-readable names used in reports and stored runs.
type IssueKind int

const (
	// KindMissingURL indicates a record whose trimmed URL is absent or empty.
	// A record with this finding triggers no other rule: a missing URL
	// cannot be further classified.
	KindMissingURL IssueKind = iota

	// KindMissingProtocol indicates a URL that does not begin with an
	// accepted network scheme prefix.
	KindMissingProtocol

	// KindMissingRef indicates a URL that does not carry the required
	// attribution marker anywhere in the string.
	KindMissingRef

	// KindDuplicateURL indicates a URL declared by more than one record
	// in the primary dataset. Derived after the full traversal.
	KindDuplicateURL

	// KindInvalidStructure indicates a split file whose parsed body is not
	// an array of tool records.
	KindInvalidStructure
)

// String returns the stable machine-readable name of the issue kind.
func (k IssueKind) String() string {
	switch k {
	case KindMissingURL:
		return "missing_url"
	case KindMissingProtocol:
		return "missing_protocol"
	case KindMissingRef:
		return "missing_ref"
	case KindDuplicateURL:
		return "duplicate_url"
	case KindInvalidStructure:
		return "invalid_structure"
	default:
		return "unknown"
	}
}

// Heading returns the human-readable section heading for the issue kind.
func (k IssueKind) Heading() string {
	switch k {
	case KindMissingURL:
		return "MISSING URL"
	case KindMissingProtocol:
		return "MISSING PROTOCOL"
	case KindMissingRef:
		return "MISSING ATTRIBUTION MARKER"
	case KindDuplicateURL:
		return "DUPLICATE URLS"
	case KindInvalidStructure:
		return "INVALID STRUCTURE"
	default:
		return "UNKNOWN"
	}
}

// IssueInfo contains metadata about an issue kind: a short summary of what
// the finding means and guidance on how to fix it.
type IssueInfo struct {
	Summary     string
	Remediation string
}

// issueInfoMapping maps issue kinds to their metadata.
// This centralized mapping keeps the wording of report output consistent
// across the text and markdown writers.
var issueInfoMapping = map[IssueKind]IssueInfo{
	KindMissingURL: {
		Summary:     "The record has no outbound URL, so the directory entry links nowhere.",
		Remediation: "Add the tool's URL, including the https:// prefix and the attribution marker.",
	},
	KindMissingProtocol: {
		Summary:     "The URL does not begin with http:// or https:// and will not resolve as an outbound link.",
		Remediation: "Prefix the URL with https:// (preferred) or http://.",
	},
	KindMissingRef: {
		Summary:     "The URL lacks the attribution marker that identifies traffic from this directory.",
		Remediation: "Append ?ref=riseofmachine.com (or &ref=... when a query string already exists).",
	},
	KindDuplicateURL: {
		Summary:     "More than one record in the primary dataset declares this exact URL.",
		Remediation: "Keep one canonical record and remove or re-link the others.",
	},
	KindInvalidStructure: {
		Summary:     "A split category file does not contain a JSON array of tool records.",
		Remediation: "Regenerate the split file so its body is a bare JSON array.",
	},
}

// GetIssueInfo returns the metadata for an issue kind.
// Unknown kinds get a generic entry rather than a panic so that report
// rendering never fails on data from a newer run.
func GetIssueInfo(kind IssueKind) IssueInfo {
	if info, ok := issueInfoMapping[kind]; ok {
		return info
	}
	return IssueInfo{
		Summary:     "Unknown issue kind. Review manually.",
		Remediation: "Inspect the record and the dataset by hand.",
	}
}

// Issue is a single validation finding. Which fields are populated depends
// on the kind: missing_url carries no URL, invalid_structure carries the
// encountered JSON type instead of record fields.
type Issue struct {
	// Title is the display name of the offending record.
	Title string `json:"title,omitempty"`

	// Category is the owning category of the record, or the category
	// derived from the file name for structural findings.
	Category string `json:"category"`

	// Slug is the record's slug if it had one at validation time.
	Slug string `json:"slug,omitempty"`

	// URL is the offending URL for protocol and attribution findings.
	URL string `json:"url,omitempty"`

	// Encountered is the JSON type name found where an array was expected.
	// Only set for invalid_structure findings.
	Encountered string `json:"encountered,omitempty"`
}

// DuplicateGroup is one URL declared by more than one primary record,
// together with every record that declares it in registration order.
type DuplicateGroup struct {
	// URL is the exact trimmed URL shared by the owners.
	URL string `json:"url"`

	// Owners lists the records that declare the URL, in traversal order.
	Owners []ToolRef `json:"owners"`
}

// Count returns the number of records that declare the URL.
func (g DuplicateGroup) Count() int {
	return len(g.Owners)
}
