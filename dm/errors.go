package dm

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports a missing input (a nil block, an empty list of
	// branches). Not recoverable by retrying.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedPatch reports delta or patch text that can't be decoded.
	ErrMalformedPatch = errors.New("malformed patch")
)
