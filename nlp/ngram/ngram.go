package ngram

import "strings"

// ExtractNgrams returns frequency map of n-grams for a given n.
func ExtractNgrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	if n <= 0 {
		return counts
	}
	for i := 0; i <= len(tokens)-n; i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// Overlap counts n-grams shared by a and b, clipped to the smaller frequency.
func Overlap(a, b map[string]int) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	shared := 0
	for gram, ca := range a {
		shared += min(ca, b[gram])
	}
	return shared
}

// Total is the number of n-gram occurrences in counts.
func Total(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
