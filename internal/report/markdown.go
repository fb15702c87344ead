package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/riseofmachine/toolaudit/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. pasting the
// audit result into a pull request that touches the dataset.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation: type-safe tables and lists, and GitHub-flavored alerts for
// the verdict.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeVerdict(md, report)

	// Fixed section order; duplicates sit between missing_ref and
	// invalid_structure.
	buckets := report.Buckets()
	for _, bucket := range buckets[:3] {
		w.writeIssueTable(md, bucket.Kind, bucket.Issues)
	}
	w.writeDuplicates(md, report)
	w.writeStructureTable(md, buckets[3].Issues)

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Tool Dataset Audit")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Dataset", "`" + report.Dataset + "`"},
			{"Audit Date", report.DateAudited.Format("2006-01-02 15:04:05 MST")},
			{"Tools Checked", strconv.Itoa(report.TotalRecords())},
			{"Primary Records", strconv.Itoa(report.PrimaryCount)},
			{"Split Records", strconv.Itoa(report.SplitCount)},
			{"Unique URLs", strconv.Itoa(report.UniqueURLs)},
		},
	})
	md.PlainText("")
}

// writeVerdict writes a GitHub-flavored alert for the pass/fail outcome.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, report *model.Report) {
	if report.Passed() {
		md.Tip("All tool records passed validation.")
	} else {
		md.Cautionf("%d issues found. The dataset should not be published until they are resolved.",
			report.TotalIssues())
	}
	md.PlainText("")
}

// writeIssueTable writes one per-record bucket as a table.
func (w *MarkdownWriter) writeIssueTable(md *markdown.Markdown, kind model.IssueKind, issues []model.Issue) {
	if len(issues) == 0 {
		return
	}

	md.H2(kind.Heading() + " (" + strconv.Itoa(len(issues)) + ")")
	md.PlainText("")
	md.PlainText(model.GetIssueInfo(kind).Summary)
	md.PlainText("")

	rows := make([][]string, 0, len(issues))
	for i, issue := range issues {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			issue.Title,
			issue.Category,
			issue.Slug,
			issue.URL,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "Category", "Slug", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeStructureTable writes the invalid_structure findings.
func (w *MarkdownWriter) writeStructureTable(md *markdown.Markdown, issues []model.Issue) {
	if len(issues) == 0 {
		return
	}

	md.H2(model.KindInvalidStructure.Heading() + " (" + strconv.Itoa(len(issues)) + ")")
	md.PlainText("")

	rows := make([][]string, 0, len(issues))
	for i, issue := range issues {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			issue.Category,
			issue.Encountered,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Category File", "Encountered"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDuplicates writes the duplicate URL groups with their owners.
func (w *MarkdownWriter) writeDuplicates(md *markdown.Markdown, report *model.Report) {
	if len(report.Duplicates) == 0 {
		return
	}

	md.H2(model.KindDuplicateURL.Heading() + " (" + strconv.Itoa(len(report.Duplicates)) + ")")
	md.PlainText("")

	for i, group := range report.Duplicates {
		md.PlainTextf("%d. `%s` (%d occurrences)", i+1, group.URL, group.Count())
		owners := make([]string, 0, len(group.Owners))
		for _, owner := range group.Owners {
			owners = append(owners, owner.Title+" ("+owner.Category+")")
		}
		md.BulletList(owners...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by toolaudit*")
}
