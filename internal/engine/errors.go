package engine

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies evaluator failures so callers and tests can
// distinguish fatal from recoverable conditions without string inspection.
type ErrorCategory int

const (
	// CategoryFatal covers connection/setup failures: the store cannot be
	// reached at all. Surfaced to main, which exits non-zero.
	CategoryFatal ErrorCategory = iota

	// CategoryFetch covers a single cycle's read failing. The whole cycle
	// is skipped; the loop continues after the normal poll interval.
	CategoryFetch

	// CategoryData covers a malformed track record. Only that record is
	// skipped; the rest of the cycle proceeds.
	CategoryData

	// CategoryPersist covers a failed write. Logged and ignored: scores are
	// recomputed from scratch next cycle, so recovery is idempotent rather
	// than retried explicitly.
	CategoryPersist
)

// String returns the category name for logs.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryFatal:
		return "fatal"
	case CategoryFetch:
		return "fetch"
	case CategoryData:
		return "data"
	case CategoryPersist:
		return "persist"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// CycleError wraps an underlying failure with its evaluator category.
type CycleError struct {
	Category ErrorCategory
	Err      error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Category, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }

func fetchError(err error) *CycleError {
	return &CycleError{Category: CategoryFetch, Err: err}
}

// Categorize extracts the evaluator category from an error chain. The second
// return is false when the error did not originate in the evaluator.
func Categorize(err error) (ErrorCategory, bool) {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Category, true
	}
	return 0, false
}
