package registry

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestDistance bounds how far a candidate may be from the misspelled
// name before suggesting it does more harm than good.
const maxSuggestDistance = 3

// closestName returns the candidate with the smallest edit distance to
// name, or empty when nothing is close enough.
func closestName(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, c := range candidates {
		if c == name {
			continue
		}
		d := levenshtein.DistanceForStrings([]rune(name), []rune(c), levenshtein.DefaultOptions)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
