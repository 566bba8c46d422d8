package wer

import (
	"strings"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		prediction string
		reference  string
		want       int
	}{
		{
			name:       "identical",
			prediction: "the cat sat on the mat",
			reference:  "the cat sat on the mat",
			want:       0,
		},
		{
			name:       "one_substitution",
			prediction: "the cat sit on the mat",
			reference:  "the cat sat on the mat",
			want:       1,
		},
		{
			name:       "one_insertion",
			prediction: "the big cat sat",
			reference:  "the cat sat",
			want:       1,
		},
		{
			name:       "one_deletion",
			prediction: "the cat on the mat",
			reference:  "the cat sat on the mat",
			want:       1,
		},
		{
			name:       "empty_prediction",
			prediction: "",
			reference:  "a b",
			want:       2,
		},
		{
			name:       "empty_reference",
			prediction: "a b c",
			reference:  "",
			want:       3,
		},
		{
			name:       "both_empty",
			prediction: "",
			reference:  "",
			want:       0,
		},
		{
			name:       "completely_different",
			prediction: "a dog ran",
			reference:  "the cat sat",
			want:       3,
		},
		{
			name:       "mixed_operations",
			prediction: "there is an other sample",
			reference:  "there is another one",
			want:       3,
		},
		{
			name:       "case_sensitive",
			prediction: "The Cat",
			reference:  "the cat",
			want:       2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(Tokenize(tt.prediction), Tokenize(tt.reference))
			if got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.prediction, tt.reference, got, tt.want)
			}
		})
	}
}

// distanceCorpus is a small set of token sequences used to exercise the
// metric properties below against each other.
var distanceCorpus = [][]string{
	nil,
	{"a"},
	{"a", "b"},
	{"b", "a"},
	{"a", "a", "a"},
	{"the", "cat", "sat", "on", "the", "mat"},
	{"the", "cat", "sat"},
	{"there", "is", "another", "one"},
	{"there", "is", "an", "other", "sample"},
}

func TestDistanceIdentity(t *testing.T) {
	for _, seq := range distanceCorpus {
		if got := Distance(seq, seq); got != 0 {
			t.Errorf("Distance(%v, %v) = %d, want 0", seq, seq, got)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	for _, a := range distanceCorpus {
		for _, b := range distanceCorpus {
			ab := Distance(a, b)
			ba := Distance(b, a)
			if ab != ba {
				t.Errorf("Distance(%v, %v) = %d but Distance(%v, %v) = %d", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	for _, a := range distanceCorpus {
		for _, b := range distanceCorpus {
			for _, c := range distanceCorpus {
				ac := Distance(a, c)
				ab := Distance(a, b)
				bc := Distance(b, c)
				if ac > ab+bc {
					t.Errorf("triangle inequality violated: d(%v,%v)=%d > d(%v,%v)+d(%v,%v)=%d",
						a, c, ac, a, b, b, c, ab+bc)
				}
			}
		}
	}
}

func TestDistanceBounds(t *testing.T) {
	// The distance never exceeds the longer sequence and never undercuts
	// the length difference.
	for _, a := range distanceCorpus {
		for _, b := range distanceCorpus {
			d := Distance(a, b)
			longer := max(len(a), len(b))
			diff := longer - min(len(a), len(b))
			if d > longer {
				t.Errorf("Distance(%v, %v) = %d exceeds max length %d", a, b, d, longer)
			}
			if d < diff {
				t.Errorf("Distance(%v, %v) = %d below length difference %d", a, b, d, diff)
			}
		}
	}
}

func TestDistanceLongSequences(t *testing.T) {
	a := Tokenize(strings.Repeat("alpha beta gamma ", 200))
	b := append(append([]string{}, a...), "delta")
	if got := Distance(a, b); got != 1 {
		t.Errorf("Distance(long, long+1) = %d, want 1", got)
	}
}
