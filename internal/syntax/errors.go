package syntax

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSource indicates the tree could not be built without syntax
	// errors. It is fatal for the affected file only.
	ErrMalformedSource = errors.New("malformed source")

	// ErrUnsupportedLanguage is returned for script languages with no grammar.
	ErrUnsupportedLanguage = errors.New("unsupported script language")
)

// ParseError locates a syntax error inside a file.
//
// Line is 1-indexed and Column 0-indexed, matching what editors print.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
