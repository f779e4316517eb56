package prep

import "errors"

var (
	// ErrLookup reports a required key missing from a derived feature map.
	// Expenses are exempt: an account absent there spends zero.
	ErrLookup = errors.New("prep: required key missing")

	// ErrDate reports a date value that does not parse as a calendar date.
	// Encoding aborts on it rather than writing a sentinel, since silently
	// mis-encoded dates corrupt the training signal.
	ErrDate = errors.New("prep: invalid date")
)
