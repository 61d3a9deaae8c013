package match

// Matching thresholds used by the playlist assembler.
//
// DefaultThreshold applies when matching a title against a single artist's
// track pool. FallbackThreshold is looser and applies to catalog-wide
// search results, which were already narrowed by title.
const (
	DefaultThreshold  = 0.85
	FallbackThreshold = 0.75
)

// Result is the outcome of a fuzzy match over a candidate list.
//
// Index is the position of the winning candidate, or -1 when no candidate
// cleared the threshold. Score is 1.0 iff the winning candidate's
// normalized title equals the normalized target.
type Result struct {
	Index int
	Score float64
}

// FindBestMatch scores each candidate title against the target and returns
// the best one.
//
// Titles are compared in normalized form. An exact normalized match wins
// immediately with score 1.0; the first such candidate in iteration order
// is returned and later candidates are never compared. Otherwise a
// candidate replaces the running best only when its score strictly exceeds
// both the current best and the threshold. When nothing clears the
// threshold the result is {-1, 0}.
func FindBestMatch(titles []string, target string, threshold float64) Result {
	targetNorm := Normalize(target)
	best := Result{Index: -1}

	for i, title := range titles {
		titleNorm := Normalize(title)

		if titleNorm == targetNorm {
			return Result{Index: i, Score: 1.0}
		}

		score := Ratio(titleNorm, targetNorm)
		if score > best.Score && score > threshold {
			best = Result{Index: i, Score: score}
		}
	}

	if best.Index < 0 {
		return Result{Index: -1, Score: 0}
	}
	return best
}

// Ratio computes a sequence-similarity ratio between two strings in the
// range [0, 1]: twice the total length of all matching blocks divided by
// the combined length. Identical strings score 1.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := matchingBlockLen(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchingBlockLen returns the total length of all matching blocks found
// by recursively locating the longest common substring and repeating on
// the pieces to its left and right.
func matchingBlockLen(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}

	matched := size
	matched += matchingBlockLen(a[:ai], b[:bi])
	matched += matchingBlockLen(a[ai+size:], b[bi+size:])
	return matched
}

// longestMatch finds the longest common substring of a and b, preferring
// the earliest position in a and then in b on ties.
func longestMatch(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// prev[j] holds the length of the common suffix ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	return ai, bi, size
}
