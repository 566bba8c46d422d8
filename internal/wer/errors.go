package wer

import (
	"errors"
	"fmt"
)

// ErrNoReferenceTokens is returned when a batch contains zero reference
// tokens, making the error rate undefined (division by zero).
var ErrNoReferenceTokens = errors.New("wer: no reference tokens in batch")

// LengthMismatchError reports a batch whose prediction and reference lists
// have different lengths. Pairs are matched by position, so a mismatch means
// some inputs would be silently dropped; the batch is rejected instead.
type LengthMismatchError struct {
	Predictions int
	References  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("wer: length mismatch: %d predictions vs %d references", e.Predictions, e.References)
}
