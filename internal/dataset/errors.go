package dataset

import (
	"errors"
	"fmt"
)

// ErrColumnNotFound is returned when a column is referenced that the header does not contain
var ErrColumnNotFound = errors.New("column not found")

// ParseError reports input that cannot be read as a table
type ParseError struct {
	Line   int    // 1-based line in the source text, 0 if unknown
	Column string // Column name for cell-level failures
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Column != "" && e.Line > 0:
		return fmt.Sprintf("parse error on line %d, column %q: %v", e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	case e.Column != "":
		return fmt.Sprintf("parse error in column %q: %v", e.Column, e.Err)
	default:
		return fmt.Sprintf("parse error: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
