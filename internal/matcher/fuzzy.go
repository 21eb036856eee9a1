// file: internal/matcher/fuzzy.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

// Distance computes the Levenshtein edit distance between two strings with
// unit insertion, deletion and substitution costs. Strings are compared rune
// by rune, so an Arabic letter counts as one edit, not two bytes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Two rows of the (la+1) x (lb+1) table are enough.
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// Similarity returns 1 - Distance(a, b)/max(len(a), len(b)) in runes, in the
// range [0, 1]. Two empty strings are identical and score 1.
//
// The ratio is computed as (max-distance)/max so that exact fractions such
// as 4/5 land on the same float64 as the literal 0.8.
func Similarity(a, b string) float64 {
	la, lb := runeLen(a), runeLen(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1.0
	}
	d := Distance(a, b)
	return float64(longest-d) / float64(longest)
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
