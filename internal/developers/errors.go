package developers

import "errors"

var (
	// ErrNotFound indicates the developer does not exist or belongs to another user.
	ErrNotFound = errors.New("developer not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
