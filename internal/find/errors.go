package find

import "errors"

var (
	// ErrEmptyQuery reports a query with no searchable content. Callers treat
	// it as "clear highlights", never as a failure.
	ErrEmptyQuery = errors.New("empty query")

	// ErrInvalidPattern wraps regex compile errors for /body/flags queries.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInconsistentMarkup is returned when a markup string cannot be
	// spliced safely: an unterminated tag, or an insertion point outside the
	// string. The line must be left as is.
	ErrInconsistentMarkup = errors.New("inconsistent markup")
)
