package types

import (
	"errors"
	"fmt"
)

// ErrNoArtifacts is wrapped in a ReadError when a pattern matches no files
var ErrNoArtifacts = errors.New("no artifacts matched")

// ReadError is returned when input artifacts cannot be discovered or read
type ReadError struct {
	Location string
	Err      error
}

func NewReadError(location string, err error) *ReadError {
	return &ReadError{Location: location, Err: err}
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error for '%s': %v", e.Location, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError is returned when a line of an artifact is not valid JSON, is not an object,
// or is missing a required field
type ParseError struct {
	Artifact string
	// 1-based line number, 0 if unknown
	Line int
	Err  error
}

func NewParseError(artifact string, line int, err error) *ParseError {
	return &ParseError{Artifact: artifact, Line: line, Err: err}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in '%s' line %d: %v", e.Artifact, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error in '%s': %v", e.Artifact, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransformError is returned when a value cannot be converted during projection,
// e.g. a non-numeric timestamp or a string where a number is expected
type TransformError struct {
	Stage string
	Field string
	Value any
	Err   error
}

func NewTransformError(stage, field string, value any, err error) *TransformError {
	return &TransformError{Stage: stage, Field: field, Value: value, Err: err}
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: invalid value %v for field '%s': %v", e.Stage, e.Value, e.Field, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// WriteError is returned when a table cannot be written to its destination
// NOTE: partially written output is left in place
type WriteError struct {
	Table string
	Path  string
	Err   error
}

func NewWriteError(table, path string, err error) *WriteError {
	return &WriteError{Table: table, Path: path, Err: err}
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to write table '%s': %v", e.Table, e.Err)
	}
	return fmt.Sprintf("failed to write table '%s' to '%s': %v", e.Table, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
