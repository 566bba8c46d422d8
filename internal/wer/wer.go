// Package wer scores sequence-prediction output (typically ASR transcripts)
// against reference transcripts using Word Error Rate: the fraction of
// reference words that must be inserted, deleted, or substituted to turn the
// prediction into the reference, aggregated across a batch before dividing.
package wer

import (
	"log/slog"
	"sync"
)

// Counts holds the accumulators for one batch: total edit operations across
// all pairs and total reference token count. Counters are exact integers;
// the result is cast to floating point only at the final division.
type Counts struct {
	Errors          int `json:"errors"`
	ReferenceTokens int `json:"reference_tokens"`
}

// Add folds another set of counts into c. Addition is commutative, so pairs
// may be scored in any order (or concurrently) and reduced with Add.
func (c *Counts) Add(other Counts) {
	c.Errors += other.Errors
	c.ReferenceTokens += other.ReferenceTokens
}

// Rate returns Errors / ReferenceTokens. Returns ErrNoReferenceTokens when
// the batch holds no reference tokens, rather than NaN.
func (c Counts) Rate() (float64, error) {
	if c.ReferenceTokens == 0 {
		return 0, ErrNoReferenceTokens
	}
	return float64(c.Errors) / float64(c.ReferenceTokens), nil
}

// Update tokenizes each prediction/reference pair on whitespace and
// accumulates edit operations and reference token counts across the batch.
// The i-th prediction is matched with the i-th reference; a batch-size
// mismatch is rejected with *LengthMismatchError.
func Update(predictions, references []string) (Counts, error) {
	if len(predictions) != len(references) {
		return Counts{}, &LengthMismatchError{
			Predictions: len(predictions),
			References:  len(references),
		}
	}

	var c Counts
	for i := range predictions {
		predTokens := Tokenize(predictions[i])
		refTokens := Tokenize(references[i])
		c.Errors += Distance(predTokens, refTokens)
		c.ReferenceTokens += len(refTokens)
	}
	return c, nil
}

// WordErrorRate computes the aggregate word error rate across a batch of
// prediction/reference pairs: one rate for the whole batch, not one per pair.
// A WER of 0 is a perfect score; rates above 1 are possible when predictions
// carry more errors than the references have words.
func WordErrorRate(predictions, references []string) (float64, error) {
	counts, err := Update(predictions, references)
	if err != nil {
		return 0, err
	}
	return counts.Rate()
}

// Score computes the word error rate for a single prediction/reference pair,
// equivalent to a batch of size one.
func Score(prediction, reference string) (float64, error) {
	return WordErrorRate([]string{prediction}, []string{reference})
}

var werDeprecationOnce sync.Once

// WER computes the aggregate word error rate across a batch.
//
// Deprecated: Use WordErrorRate. WER forwards to it unchanged and will be
// removed in a future release.
func WER(predictions, references []string) (float64, error) {
	werDeprecationOnce.Do(func() {
		slog.Warn("wer.WER is deprecated, use wer.WordErrorRate")
	})
	return WordErrorRate(predictions, references)
}
