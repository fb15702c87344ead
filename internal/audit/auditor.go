package audit

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/riseofmachine/toolaudit/internal/dataset"
	"github.com/riseofmachine/toolaudit/internal/model"
)

// DefaultRefMarker is the attribution marker every outbound URL must carry.
// It identifies traffic as originating from the directory.
const DefaultRefMarker = "?ref=riseofmachine.com"

// DefaultSchemes are the accepted network scheme prefixes for tool URLs.
func DefaultSchemes() []string {
	return []string{"http://", "https://"}
}

// ErrIssuesFound is returned by command handlers when a completed validation
// pass produced findings. The report has already been written by the time
// this error surfaces; it exists so the process can exit non-zero without
// printing a second diagnostic.
var ErrIssuesFound = errors.New("validation found issues")

// Auditor runs one validation pass. Create one per pass with New, feed it
// every record via Inspect and every structural anomaly via
// RecordStructural, then call Finalize exactly once.
//
// The Auditor is not safe for concurrent use; batch mode gives each dataset
// its own Auditor.
type Auditor struct {
	refMarker string
	schemes   []string
	logger    *slog.Logger

	// urlIndex maps each exact trimmed URL to the primary records that
	// declare it. urlOrder preserves key insertion order so duplicate
	// groups with equal counts keep discovery order after the stable sort.
	urlIndex map[string][]model.ToolRef
	urlOrder []string

	report *model.Report
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithRefMarker overrides the required attribution marker.
func WithRefMarker(marker string) Option {
	return func(a *Auditor) {
		if marker != "" {
			a.refMarker = marker
		}
	}
}

// WithSchemes overrides the accepted URL scheme prefixes.
func WithSchemes(schemes []string) Option {
	return func(a *Auditor) {
		if len(schemes) > 0 {
			a.schemes = schemes
		}
	}
}

// WithLogger sets a custom logger for rule tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// New creates an Auditor for one pass over the named dataset.
func New(datasetPath string, opts ...Option) *Auditor {
	a := &Auditor{
		refMarker: DefaultRefMarker,
		schemes:   DefaultSchemes(),
		urlIndex:  make(map[string][]model.ToolRef),
		report:    model.NewReport(datasetPath),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Inspect applies the rule sequence to one record. A record may trigger
// several rules, but a record without a URL triggers only missing_url:
// there is nothing further to classify.
func (a *Auditor) Inspect(rec model.ToolRecord) {
	switch rec.Source {
	case model.SourceSplit:
		a.report.SplitCount++
	default:
		a.report.PrimaryCount++
	}

	url := strings.TrimSpace(rec.URL)
	if url == "" {
		a.logger.Debug("missing url", "title", rec.Title, "category", rec.Category)
		a.report.AddIssue(model.KindMissingURL, model.Issue{
			Title:    rec.Title,
			Category: rec.Category,
			Slug:     rec.Slug,
		})
		return
	}

	if !a.hasAcceptedScheme(url) {
		a.logger.Debug("missing protocol", "title", rec.Title, "url", url)
		a.report.AddIssue(model.KindMissingProtocol, model.Issue{
			Title:    rec.Title,
			Category: rec.Category,
			Slug:     rec.Slug,
			URL:      url,
		})
	}

	// Independent of the scheme check: a record can fail both, one, or
	// neither.
	if !strings.Contains(url, a.refMarker) {
		a.logger.Debug("missing attribution marker", "title", rec.Title, "url", url)
		a.report.AddIssue(model.KindMissingRef, model.Issue{
			Title:    rec.Title,
			Category: rec.Category,
			Slug:     rec.Slug,
			URL:      url,
		})
	}

	// Only primary records feed the duplicate index. Split files are
	// per-category exports of the same records; indexing them too would
	// report every URL as its own duplicate.
	if rec.Source == model.SourcePrimary {
		a.register(url, rec.Ref())
	}
}

// RecordStructural records a split file whose body was not an array of
// tool records. Encountered names the JSON type that was found instead.
func (a *Auditor) RecordStructural(category, encountered string) {
	a.logger.Debug("invalid structure", "category", category, "encountered", encountered)
	a.report.AddIssue(model.KindInvalidStructure, model.Issue{
		Category:    category,
		Encountered: encountered,
	})
}

// InspectSplitFile feeds one loaded split file into the pass: its records
// when the body was an array, or a structural finding otherwise.
func (a *Auditor) InspectSplitFile(sf dataset.SplitFile) {
	if sf.Encountered != "" {
		a.RecordStructural(sf.Category, sf.Encountered)
		return
	}
	for _, rec := range sf.Records {
		a.Inspect(rec)
	}
}

// register adds an owner under the exact trimmed URL key, tracking key
// insertion order for deterministic duplicate output.
func (a *Auditor) register(url string, owner model.ToolRef) {
	if _, seen := a.urlIndex[url]; !seen {
		a.urlOrder = append(a.urlOrder, url)
	}
	a.urlIndex[url] = append(a.urlIndex[url], owner)
}

// hasAcceptedScheme reports whether the URL begins with one of the accepted
// network scheme prefixes.
func (a *Auditor) hasAcceptedScheme(url string) bool {
	for _, scheme := range a.schemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

// Finalize derives the duplicate groups from the URL index and returns the
// completed report. Groups are URLs with more than one registered owner,
// sorted descending by occurrence count; the sort is stable so equal counts
// keep key insertion order.
func (a *Auditor) Finalize() *model.Report {
	a.report.UniqueURLs = len(a.urlIndex)

	var groups []model.DuplicateGroup
	for _, url := range a.urlOrder {
		owners := a.urlIndex[url]
		if len(owners) > 1 {
			groups = append(groups, model.DuplicateGroup{URL: url, Owners: owners})
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count() > groups[j].Count()
	})
	a.report.Duplicates = groups

	a.logger.Info("validation pass complete",
		"dataset", a.report.Dataset,
		"records", a.report.TotalRecords(),
		"issues", a.report.TotalIssues(),
		"passed", a.report.Passed(),
	)

	return a.report
}
