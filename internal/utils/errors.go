package utils

import (
	"errors"
	"fmt"
)

// Bundle-level conditions surfaced to callers. Everything else is absorbed per item.
var (
	ErrBundleNotFound = errors.New("bundle directory not found")
	ErrBundleNotDir   = errors.New("bundle path is not a directory")
	ErrNoEvents       = errors.New("no events found in bundle")
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}

// IsNoData reports whether err means the bundle had nothing to analyze.
func IsNoData(err error) bool {
	return errors.Is(err, ErrBundleNotFound) || errors.Is(err, ErrBundleNotDir) || errors.Is(err, ErrNoEvents)
}
