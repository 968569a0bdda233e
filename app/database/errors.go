package database

import (
	"errors"
	"fmt"
)

var ErrUnknownTable = errors.New("unknown table")

// StorageError reports a failed store operation. Any transaction in progress
// has been rolled back by the time it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
