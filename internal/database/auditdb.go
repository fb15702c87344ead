package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/riseofmachine/toolaudit/internal/model"
)

// AuditDB provides SQLite-based storage for validation run history.
// It manages the connection and provides methods for saving and querying
// past reports.
//
// Design decision: We store one row per completed run with the full report
// as JSON plus a few extracted columns (dataset, issue counts, verdict) so
// history listings and comparisons never have to deserialize every report.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "toolaudit.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; the history workload is tiny, so a
	// single connection keeps the driver out of lock contention entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audit runs store complete validation reports as JSON
	CREATE TABLE IF NOT EXISTS audit_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		issue_summary TEXT,
		total_records INTEGER NOT NULL DEFAULT 0,
		total_issues INTEGER NOT NULL DEFAULT 0,
		passed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_dataset ON audit_runs(dataset);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON audit_runs(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// issueSummary extracts the per-kind finding counts stored alongside each
// run so history comparisons never load the full report.
func issueSummary(report *model.Report) map[string]int {
	return map[string]int{
		model.KindMissingURL.String():       len(report.MissingURL),
		model.KindMissingProtocol.String():  len(report.MissingProtocol),
		model.KindMissingRef.String():       len(report.MissingRef),
		model.KindDuplicateURL.String():     len(report.Duplicates),
		model.KindInvalidStructure.String(): len(report.InvalidStructure),
	}
}

// SaveReport saves a completed validation report and returns its run ID.
func (adb *AuditDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	summaryJSON, _ := json.Marshal(issueSummary(report)) //nolint:errcheck,errchkjson // simple map; Marshal won't fail

	passed := 0
	if report.Passed() {
		passed = 1
	}

	query := `
	INSERT INTO audit_runs (dataset, report_json, issue_summary, total_records, total_issues, passed)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		report.Dataset,
		string(reportJSON),
		string(summaryJSON),
		report.TotalRecords(),
		report.TotalIssues(),
		passed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// RunSummary contains summary information about a stored validation run.
// This is used for displaying run history without loading the full report.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Dataset is the primary dataset path the run validated.
	Dataset string

	// Timestamp is when the run was recorded.
	Timestamp time.Time

	// IssueSummary contains finding counts by kind.
	IssueSummary map[string]int

	// TotalRecords is the number of records the run checked.
	TotalRecords int

	// TotalIssues is the run's total finding count.
	TotalIssues int

	// Passed reports whether the run found no issues.
	Passed bool
}

// ListRuns retrieves run summaries, most recent first. An empty dataset
// lists runs for every dataset; limit <= 0 means no limit.
func (adb *AuditDB) ListRuns(ctx context.Context, dataset string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, dataset, timestamp, issue_summary, total_records, total_issues, passed
	FROM audit_runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if dataset != "" {
		query += " AND dataset = ?"
		args = append(args, dataset)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var run RunSummary
		var timestamp string
		var summaryJSON sql.NullString
		var passed int

		if err := rows.Scan(&run.ID, &run.Dataset, &timestamp, &summaryJSON, &run.TotalRecords, &run.TotalIssues, &passed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		run.Passed = passed != 0

		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &run.IssueSummary); err != nil {
				run.IssueSummary = make(map[string]int)
			}
		} else {
			run.IssueSummary = make(map[string]int)
		}

		results = append(results, run)
	}

	return results, rows.Err()
}

// GetRun retrieves a stored report by its run ID.
// Returns nil without error when no run has that ID.
func (adb *AuditDB) GetRun(ctx context.Context, id int64) (*model.Report, error) {
	query := `
	SELECT report_json FROM audit_runs
	WHERE id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// LatestRuns retrieves the n most recent full reports for a dataset,
// newest first.
func (adb *AuditDB) LatestRuns(ctx context.Context, dataset string, n int) ([]*model.Report, error) {
	query := `
	SELECT report_json FROM audit_runs
	WHERE dataset = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	rows, err := adb.db.QueryContext(ctx, query, dataset, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		var report model.Report
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ListDatasets returns the distinct dataset paths with stored runs.
func (adb *AuditDB) ListDatasets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT dataset FROM audit_runs
	ORDER BY dataset
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var dataset string
		if err := rows.Scan(&dataset); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, dataset)
	}

	return datasets, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
