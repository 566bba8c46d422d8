package wer

// Distance returns the minimum number of single-token insertions, deletions,
// and substitutions needed to transform prediction into reference (unit-cost
// Levenshtein distance at word level). It is symmetric in its arguments and
// defined for empty sequences: Distance(nil, b) == len(b).
func Distance(prediction, reference []string) int {
	// Levenshtein is symmetric, so keep the DP rows over the shorter
	// sequence: O(min(m,n)) space instead of the full table.
	if len(reference) > len(prediction) {
		prediction, reference = reference, prediction
	}

	prev := make([]int, len(reference)+1)
	curr := make([]int, len(reference)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(prediction); i++ {
		curr[0] = i
		for j := 1; j <= len(reference); j++ {
			if prediction[i-1] == reference[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + 1
			curr[j] = min(del, ins, sub)
		}
		prev, curr = curr, prev
	}

	return prev[len(reference)]
}
