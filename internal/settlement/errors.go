package settlement

import "errors"

var (
	// ErrInvalidArgument covers malformed or out-of-bounds input (amount
	// limits, unknown payment method, bad currency).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound: the referenced wallet, request, or bet does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the acting identity may not perform the operation
	// (non-admin review, banned account).
	ErrForbidden = errors.New("forbidden")
)
