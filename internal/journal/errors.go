package journal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("journal not found")
	ErrAlreadyArchived = errors.New("journal already archived")
	ErrNotArchived     = errors.New("journal is not archived")

	// ErrLedgerUnreadable means the stored sell records could not be decoded,
	// so an append, update or remove would silently discard them.
	ErrLedgerUnreadable = errors.New("stored sell records are unreadable")

	// ErrIndexOutOfRange also matches ErrNotFound.
	ErrIndexOutOfRange = fmt.Errorf("%w: sell record index out of range", ErrNotFound)
)

// ValidationError reports a required field that was empty or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid journal: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Required(field string) error {
	return &ValidationError{Field: field, Reason: "must not be empty"}
}

// StorageError wraps a persistence failure. It is never retried here; callers
// that want bounded retry can match it with errors.As.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
