package diag

import "fmt"

// Error is a single typed diagnostic. It is the only way checker code
// reports a problem: never a bare fmt.Errorf string threaded back up the
// call stack.
type Error struct {
	Code     Code
	Phase    Phase
	Severity Severity
	Span     Span
	Args     []interface{}
}

func (e *Error) Error() string {
	template, ok := messages[e.Code]
	if !ok {
		template = "unknown diagnostic"
	}
	msg := fmt.Sprintf(template, e.Args...)
	if e.Span.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	return fmt.Sprintf("%s: [%s] %s", e.Span, e.Code, msg)
}

func newError(sev Severity, phase Phase, code Code, span Span, args ...interface{}) *Error {
	return &Error{Code: code, Phase: phase, Severity: sev, Span: span, Args: args}
}

// Errorf builds an error-severity diagnostic.
func Errorf(phase Phase, code Code, span Span, args ...interface{}) *Error {
	return newError(SeverityError, phase, code, span, args...)
}

// Warnf builds a warning-severity diagnostic.
func Warnf(phase Phase, code Code, span Span, args ...interface{}) *Error {
	return newError(SeverityWarning, phase, code, span, args...)
}

// Notef builds a note-severity diagnostic.
func Notef(phase Phase, code Code, span Span, args ...interface{}) *Error {
	return newError(SeverityNote, phase, code, span, args...)
}
