package main

import (
	"errors"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable config, bad log level)
	ExitDataError    = 3 // Data error (malformed JSON input, invalid criteria)
	ExitNotFound     = 4 // Targeted record does not exist
	ExitStorageError = 5 // Dataset file missing, unreadable, or unwritable
	ExitMirrorStale  = 6 // SQLite mirror is out of date
)

// exitCodeFor maps a store error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, store.ErrStorageUnavailable):
		return ExitStorageError
	case errors.Is(err, store.ErrInvalidCriteria),
		errors.Is(err, store.ErrUnknownOperator),
		errors.Is(err, store.ErrInvalidOperand):
		return ExitDataError
	default:
		return ExitError
	}
}
