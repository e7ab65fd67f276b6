package store

import "errors"

var (
	// ErrStorageUnavailable is returned when the dataset file cannot be
	// read, parsed, or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when an operation targets an absent identifier.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCriteria is returned for criteria that are neither an
	// identifier nor a field mapping.
	ErrInvalidCriteria = errors.New("invalid criteria")

	// ErrUnknownOperator is returned when a condition names an operator
	// that is not registered.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrInvalidOperand is returned when an operator's operand has the
	// wrong shape, e.g. $in given a non-list.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("store is closed")
)
