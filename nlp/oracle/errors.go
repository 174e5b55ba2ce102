package oracle

import (
	"errors"
	"fmt"
)

var (
	ErrNilScorer       = errors.New("oracle: scorer is nil")
	ErrInvalidCapacity = errors.New("oracle: beam capacity must be positive")
	ErrInvalidOptions  = errors.New("oracle: invalid options")

	// ErrDegenerateInput reports an empty document or summary.
	ErrDegenerateInput = errors.New("oracle: degenerate input")
	// ErrRefinement reports an oracle that cannot be permuted against its summary.
	ErrRefinement = errors.New("oracle: refinement failed")
	// ErrMissingOracleField reports a document without the requested oracle label.
	ErrMissingOracleField = errors.New("oracle: missing oracle field")
	// ErrSamplePoolExhausted reports a negative-sample request larger than the pool.
	ErrSamplePoolExhausted = errors.New("oracle: sample pool exhausted")
	// ErrInsufficientCandidates reports a beam step that had nothing left to select.
	ErrInsufficientCandidates = errors.New("oracle: not enough eligible sentences")
	// ErrBudgetExceeded reports a beam search that hit Options.MaxEvaluations.
	ErrBudgetExceeded = errors.New("oracle: evaluation budget exceeded")
)

func wrap(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
