// Package slug implements the deterministic slugification and locale-aware
// title ordering used by the dataset maintenance command.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Slugification steps, applied in order: lowercase and trim, collapse runs
// of whitespace to single hyphens, strip everything that is not a word
// character or hyphen, collapse repeated hyphens, trim edge hyphens.
var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	edgeHyphens   = regexp.MustCompile(`^-+|-+$`)
)

// Make derives the URL-safe slug for a tool title. The same title always
// yields the same slug, so regenerating slugs is idempotent.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = edgeHyphens.ReplaceAllString(s, "")
	return s
}

// Comparer orders tool titles with locale-aware comparison, matching how the
// directory sorts categories for display.
//
// Design decision: A collator is not safe for concurrent use, so we expose a
// small value type created per sort rather than a package-level instance.
type Comparer struct {
	collator *collate.Collator
}

// NewComparer creates a Comparer for English collation.
func NewComparer() *Comparer {
	return &Comparer{collator: collate.New(language.English)}
}

// Compare returns -1, 0, or 1 ordering a before, equal to, or after b.
func (c *Comparer) Compare(a, b string) int {
	return c.collator.CompareString(a, b)
}

// Less reports whether a orders before b.
func (c *Comparer) Less(a, b string) bool {
	return c.Compare(a, b) < 0
}
