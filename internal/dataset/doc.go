// Package dataset loads the tool directory's JSON sources and normalizes
// them into flat streams of model.ToolRecord for the auditor.
//
// Two representations exist:
//   - The primary dataset: one {"tools": [{category, content: [...]}]}
//     document. A primary file that is missing, unreadable, or not of that
//     shape is a fatal error; nothing can be validated without it.
//   - The split dataset: an optional directory of <category>.json files,
//     each a bare JSON array of tool records. The category name is the file
//     name with the .json extension stripped, nothing else. Split loading is
//     tolerant: a file whose body is not an array becomes a structural
//     finding so one bad file does not abort the whole run.
//
// No business rules live here; the loader only reads, decodes, and tags.
package dataset
