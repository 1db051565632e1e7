package message

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every *MalformedError via errors.Is.
var ErrMalformed = errors.New("malformed message")

// ErrNotRequest is returned by ParseRequest for response frames.
var ErrNotRequest = errors.New("message: frame is not a request")

// MalformedError describes the line that could not be classified or split.
type MalformedError struct {
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed message: line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

func malformed(line int, text, reason string) error {
	return &MalformedError{Line: line, Text: text, Reason: reason}
}
