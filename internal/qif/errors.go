package qif

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for a zero-length document
	ErrEmptyInput = errors.New("data is empty")
	// ErrUnrecognizedHeader is returned for a !-prefixed line outside the header vocabulary
	ErrUnrecognizedHeader = errors.New("header not recognized")
	// ErrMalformedAmount is returned when an amount is not a decimal literal
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrMalformedDate is returned when a date token matches none of the known shapes
	ErrMalformedDate = errors.New("malformed date")
	// ErrInconsistentChunkState is returned when a chunk cannot be interpreted
	// from the state built up so far, e.g. a headerless first chunk or a split
	// field before any split.
	ErrInconsistentChunkState = errors.New("inconsistent chunk state")
)

// ParseError locates a failure within the document. Chunk is the zero-based
// index of the chunk in the file and Line the offending line.
type ParseError struct {
	Chunk int
	Line  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chunk %d: %q: %v", e.Chunk, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func chunkError(index int, line string, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return &ParseError{Chunk: index, Line: line, Err: err}
}

// IsParseError reports whether err came from parsing document content rather
// than from reading it.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) || errors.Is(err, ErrEmptyInput)
}
