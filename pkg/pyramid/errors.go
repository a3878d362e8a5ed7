package pyramid

import "errors"

var(
	// ErrAllocation means the pyramid's buffers could not be set up; the
	// pyramid is unusable afterwards.
	ErrAllocation = errors.New("pyramid allocation")

	// ErrProcessing means one input was malformed or inconsistent; the
	// pyramid is left as it was before the call.
	ErrProcessing = errors.New("pyramid processing")
)
