package session

import "errors"

var (
	// ErrNotFound is returned by Store.Get for a key that is cleanly
	// absent, as opposed to a storage I/O failure.
	ErrNotFound = errors.New("session: key not found")

	// ErrStaleEpoch is returned when a conditional write is discarded
	// because the session was cleared after the writing flow began.
	ErrStaleEpoch = errors.New("session: epoch changed, write discarded")
)

// IsNotFound reports whether err is a clean miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
