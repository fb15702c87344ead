// Package model defines the core data structures used throughout toolaudit.
//
// This package contains the following main types:
//   - ToolRecord: One entry in the tool directory with its source tag
//   - IssueKind: The fixed enumeration of validation finding kinds
//   - Report: The aggregated result of one validation pass
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (dataset, audit, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
