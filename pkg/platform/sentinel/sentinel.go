package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these wrapped with
// context so services can translate them into domain errors:
//   - ErrNotFound: record does not exist in the store (or already expired)
//   - ErrUnavailable: the backing store could not be reached or refused the call
//   - ErrInvalidState: stored data cannot be interpreted
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
