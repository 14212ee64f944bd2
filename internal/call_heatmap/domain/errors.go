package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDataNotFound       = errors.New("input data not found")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrDuplicatePair      = errors.New("duplicate source/destination pair")
	ErrInvalidCanonical   = errors.New("invalid canonical entity list")
	ErrEmptyMatrix        = errors.New("matrix has no rows or columns")
	ErrOutputWriteFailure = errors.New("output write failure")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// RecordError points at the offending input cell.
type RecordError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d, column %q, value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
