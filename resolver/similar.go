package resolver

import "strings"

// findSimilar returns the closest candidate to a misspelled name, or empty
// when nothing scores high enough to make a useful hint.
func findSimilar(target string, candidates []string) string {
	target = strings.ToLower(target)
	best := ""
	bestScore := 0
	for _, c := range candidates {
		if score := similarity(target, strings.ToLower(c)); score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < 6 {
		return ""
	}
	return best
}

// similarity scores a shared prefix plus a containment bonus.
func similarity(a, b string) int {
	if a == b {
		return 100
	}
	score := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		score += 2
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		score += 10
	}
	return score
}
