package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/riseofmachine/toolaudit/internal/model"
)

// TextWriter outputs deterministic human-readable text reports.
// The format is designed for terminal display and is byte-stable: the same
// report always renders to the same bytes, so re-running an unchanged
// dataset yields identical output. For that reason the text format carries
// no timestamps; the JSON and Markdown formats include them.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to files
// or other tools.
type TextWriter struct {
	baseWriter

	// verbose adds the per-kind summary line under each section heading.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with per-kind explanations.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
// Section order is fixed: missing_url, missing_protocol, missing_ref,
// duplicates, invalid_structure. Findings are numbered from 1 inside each
// section. The final summary line is always rendered and counts every
// bucket entry plus one per duplicate group.
func (w *TextWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	if report.Passed() {
		sb.WriteString("All tool records passed validation.\n\n")
	} else {
		w.writeSections(&sb, report)
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total issues: %d\n", report.TotalIssues()))

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with record and URL counts.
func (w *TextWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        TOOL DATASET AUDIT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Dataset:       %s\n", report.Dataset))
	sb.WriteString(fmt.Sprintf("Tools checked: %d (primary: %d, split: %d)\n",
		report.TotalRecords(), report.PrimaryCount, report.SplitCount))
	sb.WriteString(fmt.Sprintf("Unique URLs:   %d\n", report.UniqueURLs))
	sb.WriteString("\n")
}

// writeSections writes every non-empty bucket in the fixed section order.
// Duplicates render between missing_ref and invalid_structure.
func (w *TextWriter) writeSections(sb *strings.Builder, report *model.Report) {
	buckets := report.Buckets()

	// missing_url, missing_protocol, missing_ref
	for _, bucket := range buckets[:3] {
		w.writeIssueSection(sb, bucket.Kind, bucket.Issues)
	}

	w.writeDuplicateSection(sb, report.Duplicates)

	// invalid_structure
	w.writeIssueSection(sb, buckets[3].Kind, buckets[3].Issues)
}

// writeIssueSection writes one bucket's findings with 1-based indices.
// Empty buckets are skipped entirely.
func (w *TextWriter) writeIssueSection(sb *strings.Builder, kind model.IssueKind, issues []model.Issue) {
	if len(issues) == 0 {
		return
	}

	w.writeSectionHeading(sb, fmt.Sprintf("%s (%d)", kind.Heading(), len(issues)), kind)

	for i, issue := range issues {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, formatIssue(kind, issue)))
	}
	sb.WriteString("\n")
}

// writeDuplicateSection writes the duplicate groups with their owners.
func (w *TextWriter) writeDuplicateSection(sb *strings.Builder, groups []model.DuplicateGroup) {
	if len(groups) == 0 {
		return
	}

	w.writeSectionHeading(sb, fmt.Sprintf("%s (%d)", model.KindDuplicateURL.Heading(), len(groups)), model.KindDuplicateURL)

	for i, group := range groups {
		sb.WriteString(fmt.Sprintf("  %d. %s (%d occurrences)\n", i+1, group.URL, group.Count()))
		for _, owner := range group.Owners {
			sb.WriteString(fmt.Sprintf("       * %s\n", formatRef(owner)))
		}
	}
	sb.WriteString("\n")
}

// writeSectionHeading writes a section rule, heading, and optional summary.
func (w *TextWriter) writeSectionHeading(sb *strings.Builder, heading string, kind model.IssueKind) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(heading)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	if w.verbose {
		info := model.GetIssueInfo(kind)
		sb.WriteString(fmt.Sprintf("%s\n", info.Summary))
	}
}

// formatIssue renders one finding's stored fields on a single line.
func formatIssue(kind model.IssueKind, issue model.Issue) string {
	if kind == model.KindInvalidStructure {
		return fmt.Sprintf("%s: expected an array, found %s", issue.Category, issue.Encountered)
	}

	s := fmt.Sprintf("%s (category: %s", issue.Title, issue.Category)
	if issue.Slug != "" {
		s += fmt.Sprintf(", slug: %s", issue.Slug)
	}
	s += ")"
	if issue.URL != "" {
		s += fmt.Sprintf(" url: %s", issue.URL)
	}
	return s
}

// formatRef renders a duplicate-group owner on a single line.
func formatRef(ref model.ToolRef) string {
	s := fmt.Sprintf("%s (category: %s", ref.Title, ref.Category)
	if ref.Slug != "" {
		s += fmt.Sprintf(", slug: %s", ref.Slug)
	}
	return s + ")"
}
