package usecase

import (
	"math"
	"sort"
	"strings"
)

// TokenSortRatio scores how similar two cleaned product names are,
// independent of word order, on a 0-100 scale. Each name is tokenized on
// whitespace, the tokens sorted and rejoined, and the rejoined strings
// compared with a normalized indel similarity. "amul taaza milk 500ml"
// and "500ml amul taaza milk" therefore score 100.
func TokenSortRatio(a, b string) int {
	return indelRatio(sortTokens(a), sortTokens(b))
}

// sortTokens returns the string's whitespace-delimited tokens sorted and
// rejoined with single spaces.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// indelRatio computes 100 * (1 - dist/(len(a)+len(b))) where dist is the
// edit distance counting insertions and deletions only (a substitution
// costs 2). Two empty strings are identical by convention.
func indelRatio(a, b string) int {
	r1 := []rune(a)
	r2 := []rune(b)
	lensum := len(r1) + len(r2)
	if lensum == 0 {
		return 100
	}
	dist := indelDistance(r1, r2)
	return int(math.Round(100 * float64(lensum-dist) / float64(lensum)))
}

// indelDistance is the weighted Levenshtein distance with substitution
// cost 2, computed with two rows instead of a full matrix.
func indelDistance(r1, r2 []rune) int {
	m := len(r1)
	n := len(r2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 2
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution (two indels)
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
