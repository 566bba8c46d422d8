package wer

// Alignment breaks the edit distance down by operation type. Insertions are
// extra tokens in the prediction, deletions are reference tokens missing from
// the prediction. When several minimal edit paths exist the split between
// operations may differ from other tools, but the total never does.
type Alignment struct {
	Substitutions int `json:"substitutions"`
	Insertions    int `json:"insertions"`
	Deletions     int `json:"deletions"`
}

// Errors returns the total edit operations, equal to Distance for the same pair.
func (a Alignment) Errors() int {
	return a.Substitutions + a.Insertions + a.Deletions
}

// Align computes the per-operation breakdown for one prediction/reference
// pair. It keeps the full DP table to backtrace the edit path, so it costs
// O(m·n) space where Distance needs only two rows; use Distance when the
// breakdown is not needed.
func Align(prediction, reference []string) Alignment {
	m, n := len(prediction), len(reference)

	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if reference[i-1] == prediction[j-1] {
				d[i][j] = d[i-1][j-1]
				continue
			}
			d[i][j] = min(d[i-1][j-1], d[i-1][j], d[i][j-1]) + 1
		}
	}

	var a Alignment
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && reference[i-1] == prediction[j-1]:
			i--
			j--
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			a.Substitutions++
			i--
			j--
		case i > 0 && d[i][j] == d[i-1][j]+1:
			a.Deletions++
			i--
		default:
			a.Insertions++
			j--
		}
	}
	return a
}
