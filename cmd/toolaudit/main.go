// Package main provides the entry point for the toolaudit CLI.
//
// toolaudit validates the curated AI-tools directory dataset: every record
// must carry a working outbound link with the https scheme and the
// directory's attribution marker, and no URL may be declared twice.
//
// Usage:
//
//	toolaudit validate
//	toolaudit validate --split-dir data/categories data/tools.json
//
// See --help for all available options.
package main

// main is the entry point for toolaudit.
func main() {
	Execute()
}
