// Package pipeline orchestrates the stages of one validation pass and the
// concurrent processing of multiple dataset roots.
//
// A Pipeline runs an ordered list of steps against one Auditor: load the
// primary dataset, load the split directory, each feeding records into the
// auditor. The pass itself stays a single linear traversal; concurrency
// exists only in BatchProcessor, which fans independent datasets out over
// an errgroup.
package pipeline
