package store

import "errors"

// Store errors.
var (
	// ErrKeyNotFound indicates the KV has no value for the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrIO indicates a persistence failure that survived the retry.
	ErrIO = errors.New("store I/O failed")
)

// IOError wraps a persistence failure with the operation and key.
type IOError struct {
	Op  string // Operation that failed (e.g., "set", "touch")
	Key string // Ticket ID involved
	Err error  // Underlying error
}

func (e *IOError) Error() string {
	return "store " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrIO so callers can match with errors.Is.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
