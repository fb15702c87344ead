package dataset

import "errors"

// Loader errors.
//
// Design decision: We use a package-level sentinel for the malformed-dataset
// condition rather than an ad-hoc fmt.Errorf so callers can distinguish the
// fatal "this is not a tools document" case from ordinary I/O errors with
// errors.Is while still wrapping the decode detail at the call site.
var (
	// ErrMalformedDataset is returned when the primary dataset is not a
	// JSON document with a top-level "tools" array of categories. This is
	// the only fatal validation condition: the run aborts before any
	// findings are reported.
	ErrMalformedDataset = errors.New("primary dataset is not a {tools: [...]} document")
)
