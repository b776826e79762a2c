package diag

import "fmt"

// Span identifies a source location: a file path plus a 1-based line/column.
// Diagnostics and AST nodes share this same notion of "where".
type Span struct {
	File   string
	Line   int
	Column int
}

func (s Span) String() string {
	if s.Line == 0 {
		return s.File
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsZero reports whether the span carries no position information.
func (s Span) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}
