// Package audit implements the dataset validation engine.
//
// The Auditor consumes every tool record from both dataset sources exactly
// once, in loader order, applies the integrity rules to each record
// independently, and accumulates cross-record state (the URL-to-owners index
// used for duplicate detection). Finalize derives the duplicate groups and
// returns the immutable result report.
//
// Design decision: All aggregation state is local to the Auditor and
// returned as a model.Report rather than held in package-level variables.
// This keeps a validation pass pure: same input records, same report, and
// independent passes can run side by side in batch mode.
package audit
