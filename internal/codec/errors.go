// Package codec converts between menu trees and their persisted JSON form.
// It performs no I/O.
package codec

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every *ParseError through errors.Is.
var ErrParse = errors.New("codec: parse error")

// ErrNoControl indicates a document without a control element.
var ErrNoControl = errors.New("codec: document has no control element")

// ParseError describes why a document was rejected. Path locates the
// offending element, e.g. "[0].children[3]".
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path == "" {
		return "codec: " + msg
	}
	return fmt.Sprintf("codec: %s: %s", e.Path, msg)
}

// Unwrap returns the underlying error, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) hold for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func parseErrorf(path, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Message: fmt.Sprintf(format, args...)}
}
