package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by finders when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique-key violation reported by the engine.
	ErrConflict = errors.New("conflicting row")
)

// ConfigurationError reports an unusable connection string or a missing
// engine.
type ConfigurationError struct {
	URL    string
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("store configuration %q: %s", e.URL, e.Reason)
}

// DataAccessError wraps any engine failure while opening a session, running a
// repository operation, or finishing a transaction.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a DataAccessError for op, or nil when err is nil.
// ErrNotFound and errors that already carry a kind pass through unchanged.
func Wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var dae *DataAccessError
	var rex RangeExhaustedError
	if errors.As(err, &dae) || errors.As(err, &rex) || isValidation(err) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// RangeExhaustedError reports that a document numbering range has no free
// number left.
type RangeExhaustedError struct {
	PeriodID    int
	NumberStart int
	NumberEnd   int
}

func (e RangeExhaustedError) Error() string {
	return fmt.Sprintf("no free document number in %d..%d for period %d", e.NumberStart, e.NumberEnd, e.PeriodID)
}
