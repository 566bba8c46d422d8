package wer

import (
	"errors"
	"math"
	"testing"
)

func TestWordErrorRate(t *testing.T) {
	tests := []struct {
		name        string
		predictions []string
		references  []string
		want        float64
	}{
		{
			name:        "aggregate_batch",
			predictions: []string{"this is the prediction", "there is an other sample"},
			references:  []string{"this is the reference", "there is another one"},
			// 1 + 3 errors over 4 + 4 reference tokens.
			want: 0.5,
		},
		{
			name:        "perfect_match",
			predictions: []string{"a b c"},
			references:  []string{"a b c"},
			want:        0,
		},
		{
			name:        "pure_insertion",
			predictions: []string{""},
			references:  []string{"a b"},
			want:        1.0,
		},
		{
			name:        "rate_above_one",
			predictions: []string{"w x y z"},
			references:  []string{"a"},
			want:        4.0,
		},
		{
			name:        "whitespace_only_prediction",
			predictions: []string{"   \t  "},
			references:  []string{"hello world"},
			want:        1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WordErrorRate(tt.predictions, tt.references)
			if err != nil {
				t.Fatalf("WordErrorRate: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WordErrorRate = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestWordErrorRateCommutative(t *testing.T) {
	predictions := []string{"this is the prediction", "there is an other sample", "a b c"}
	references := []string{"this is the reference", "there is another one", "a b d"}

	forward, err := WordErrorRate(predictions, references)
	if err != nil {
		t.Fatalf("WordErrorRate: %v", err)
	}

	reversedP := []string{predictions[2], predictions[0], predictions[1]}
	reversedR := []string{references[2], references[0], references[1]}
	reordered, err := WordErrorRate(reversedP, reversedR)
	if err != nil {
		t.Fatalf("WordErrorRate reordered: %v", err)
	}

	if forward != reordered {
		t.Errorf("batch order changed the rate: %f vs %f", forward, reordered)
	}
}

func TestWordErrorRateLengthMismatch(t *testing.T) {
	_, err := WordErrorRate([]string{"a", "b"}, []string{"a"})
	var mismatch *LengthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("want *LengthMismatchError, got %v", err)
	}
	if mismatch.Predictions != 2 || mismatch.References != 1 {
		t.Errorf("mismatch counts = %d/%d, want 2/1", mismatch.Predictions, mismatch.References)
	}
}

func TestWordErrorRateNoReferenceTokens(t *testing.T) {
	_, err := WordErrorRate([]string{""}, []string{""})
	if !errors.Is(err, ErrNoReferenceTokens) {
		t.Fatalf("want ErrNoReferenceTokens, got %v", err)
	}

	// Prediction tokens alone do not define a rate.
	_, err = WordErrorRate([]string{"some words"}, []string{""})
	if !errors.Is(err, ErrNoReferenceTokens) {
		t.Fatalf("want ErrNoReferenceTokens with non-empty prediction, got %v", err)
	}
}

func TestScore(t *testing.T) {
	got, err := Score("this is the prediction", "this is the reference")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Score = %f, want 0.25", got)
	}
}

func TestUpdateCounts(t *testing.T) {
	counts, err := Update(
		[]string{"this is the prediction", "there is an other sample"},
		[]string{"this is the reference", "there is another one"},
	)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if counts.Errors != 4 {
		t.Errorf("Errors = %d, want 4", counts.Errors)
	}
	if counts.ReferenceTokens != 8 {
		t.Errorf("ReferenceTokens = %d, want 8", counts.ReferenceTokens)
	}
}

func TestCountsAdd(t *testing.T) {
	var total Counts
	total.Add(Counts{Errors: 1, ReferenceTokens: 4})
	total.Add(Counts{Errors: 3, ReferenceTokens: 4})

	rate, err := total.Rate()
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rate != 0.5 {
		t.Errorf("Rate = %f, want 0.5", rate)
	}
}

func TestDeprecatedWERForwards(t *testing.T) {
	want, err := WordErrorRate([]string{"a b c"}, []string{"a x c"})
	if err != nil {
		t.Fatalf("WordErrorRate: %v", err)
	}
	got, err := WER([]string{"a b c"}, []string{"a x c"})
	if err != nil {
		t.Fatalf("WER: %v", err)
	}
	if got != want {
		t.Errorf("WER = %f, want %f", got, want)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"  spaced   out\ttabs\nnewline ", 4},
		{"Hello, world!", 2}, // punctuation is kept, not stripped
	}
	for _, tt := range tests {
		if got := Tokenize(tt.in); len(got) != tt.want {
			t.Errorf("Tokenize(%q) = %v, want %d tokens", tt.in, got, tt.want)
		}
	}
}
