package feed

import "errors"

var (
	// ErrInvalidInput marks a malformed request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrItemNotFound marks a selection of an id absent from the current
	// filtered output.
	ErrItemNotFound = errors.New("activity item not found")
)
