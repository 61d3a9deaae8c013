package match

import "strings"

// Normalize canonicalizes a track title for comparison.
//
// Lowercases the input, truncates at the first "(" to drop live/remix/
// remaster annotations, deletes apostrophes ("don't" becomes "dont"),
// turns commas and periods into spaces, and collapses whitespace runs.
//
// Normalize is a pure function and idempotent: applying it twice yields
// the same result as applying it once.
func Normalize(title string) string {
	title = strings.ToLower(title)

	if idx := strings.Index(title, "("); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}

	title = strings.ReplaceAll(title, "'", "")
	title = strings.ReplaceAll(title, ",", " ")
	title = strings.ReplaceAll(title, ".", " ")

	return strings.Join(strings.Fields(title), " ")
}
