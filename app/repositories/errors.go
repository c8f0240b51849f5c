package repositories

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// DataAccessError reports a failed store operation and carries its cause.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// wrapErr wraps err as a DataAccessError for op. Nil stays nil and an
// existing DataAccessError is returned unchanged.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// WrapErr is wrapErr for store implementations outside this package.
func WrapErr(op string, err error) error {
	return wrapErr(op, err)
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
