package textutil

import "strings"

// Window bounds for the token-window scan. The window grows with the
// needle and is clamped so long transcripts stay cheap to scan while short
// phrases still get enough context.
const (
	WindowPad = 4
	WindowMin = 8
	WindowMax = 40
)

// fallbackFloor is the lowest whole-string ratio accepted by the final
// fallback comparison for short phrases.
const fallbackFloor = 0.70

// Ratio computes a Ratcliff-Obershelp similarity ratio between two strings
// (same scale as Python's difflib.SequenceMatcher.ratio): 2*M/T where M is
// the total length of matching blocks and T the combined length.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	ra, rb := []rune(a), []rune(b)
	m := matchingTotal(ra, rb)
	return 2.0 * float64(m) / float64(len(ra)+len(rb))
}

// matchingTotal sums the lengths of matching blocks: the longest common
// substring, then recursively the pieces to its left and right.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:ai], b[:bi])
	total += matchingTotal(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonBlock finds the longest common contiguous run between a and b.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] = length of the common run ending at a[i-1], b[j-1]
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

// FuzzyContains reports whether needle appears in haystack, exactly or
// approximately. Both sides are expected to be normalized already. The scan
// slides a token window sized to the needle over the haystack; a final
// whole-string comparison at a relaxed threshold catches short phrases in
// short transcripts.
func FuzzyContains(haystack, needle string, threshold float64) bool {
	if needle == "" || haystack == "" {
		return false
	}
	if strings.Contains(haystack, needle) {
		return true
	}

	toks := strings.Fields(haystack)
	win := len(strings.Fields(needle)) + WindowPad
	if win < WindowMin {
		win = WindowMin
	}
	if win > WindowMax {
		win = WindowMax
	}

	last := len(toks) - win
	if last < 0 {
		last = 0
	}
	for i := 0; i <= last; i++ {
		end := i + win
		if end > len(toks) {
			end = len(toks)
		}
		segment := strings.Join(toks[i:end], " ")
		if Ratio(segment, needle) >= threshold {
			return true
		}
	}

	relaxed := threshold - 0.1
	if relaxed < fallbackFloor {
		relaxed = fallbackFloor
	}
	return Ratio(haystack, needle) >= relaxed
}

// CountFuzzyAny counts how many phrases in the list fuzzy-match the text.
func CountFuzzyAny(text string, phrases []string, threshold float64) int {
	n := 0
	for _, p := range phrases {
		if FuzzyContains(text, p, threshold) {
			n++
		}
	}
	return n
}

// AnyFuzzy reports whether at least one phrase in the list matches.
func AnyFuzzy(text string, phrases []string, threshold float64) bool {
	for _, p := range phrases {
		if FuzzyContains(text, p, threshold) {
			return true
		}
	}
	return false
}
