package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The dataset locations match the directory repository's layout; the rule
// parameters match the published directory's link policy.
const (
	// DefaultDatasetPath is where the monolithic tools file lives in the
	// directory repository.
	DefaultDatasetPath = "data/tools.json"

	// DefaultSplitDir is where the per-category split files live.
	// The split dataset is optional; a missing directory is skipped.
	DefaultSplitDir = "data/categories"

	// DefaultRefMarker is the attribution query fragment every outbound
	// URL must carry so traffic can be attributed to the directory.
	DefaultRefMarker = "?ref=riseofmachine.com"

	// DefaultBatchSize of 4 concurrent dataset passes is plenty: each pass
	// is a short in-memory traversal, so the limit mostly bounds open file
	// handles when many dataset roots are validated at once.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "toolaudit"
)

// DefaultSchemes returns the accepted URL scheme prefixes.
func DefaultSchemes() []string {
	return []string{"http://", "https://"}
}

// Config holds all configuration options for toolaudit.
// This struct is populated from CLI flags and the optional config file and
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Datasets are the primary dataset paths to validate. Usually one;
	// more than one enables batch mode.
	Datasets []string

	// SplitDir is the directory of per-category split files to validate
	// alongside the primary dataset. Empty disables split validation.
	SplitDir string

	// RefMarker is the required attribution marker checked by the
	// missing_ref rule.
	RefMarker string

	// Schemes are the accepted URL scheme prefixes checked by the
	// missing_protocol rule.
	Schemes []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent passes when validating
	// multiple dataset roots.
	BatchSize int

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .toolaudit in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output instead of the human-readable
	// text format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, writes the report to this path instead of
	// standard output.
	ReportFile string

	// SaveHistory stores each completed run in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Datasets:    []string{DefaultDatasetPath},
		SplitDir:    DefaultSplitDir,
		RefMarker:   DefaultRefMarker,
		Schemes:     DefaultSchemes(),
		BatchSize:   DefaultBatchSize,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// Validate checks the configuration for consistency.
// It returns one of the package's sentinel errors on failure.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return ErrNoDataset
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ReportFile != "" && len(c.Datasets) > 1 {
		return ErrOutputWithMultipleDatasets
	}
	if c.RefMarker == "" {
		return ErrEmptyRefMarker
	}
	if len(c.Schemes) == 0 {
		return ErrNoSchemes
	}
	return nil
}

// XDGDataDir returns the XDG data directory for toolaudit.
// The history database lives here.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
