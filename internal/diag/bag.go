package diag

import (
	"fmt"
	"sort"
)

// Bag collects diagnostics, deduplicating by (file, line, column, code), and
// exposes a stable file-then-position ordering and an ok/error verdict.
type Bag struct {
	seen  map[string]bool
	items []*Error
}

func NewBag() *Bag {
	return &Bag{seen: make(map[string]bool)}
}

func (b *Bag) key(e *Error) string {
	return fmt.Sprintf("%s:%d:%d:%s", e.Span.File, e.Span.Line, e.Span.Column, e.Code)
}

// Add appends a diagnostic, dropping an exact duplicate.
func (b *Bag) Add(e *Error) {
	if e == nil {
		return
	}
	k := b.key(e)
	if b.seen[k] {
		return
	}
	b.seen[k] = true
	b.items = append(b.items, e)
}

// Errorf is a convenience that builds and adds an error diagnostic in one call.
func (b *Bag) Errorf(phase Phase, code Code, span Span, args ...interface{}) {
	b.Add(Errorf(phase, code, span, args...))
}

// Warnf is a convenience that builds and adds a warning diagnostic.
func (b *Bag) Warnf(phase Phase, code Code, span Span, args ...interface{}) {
	b.Add(Warnf(phase, code, span, args...))
}

// All returns diagnostics ordered by file, then source position.
func (b *Bag) All() []*Error {
	out := make([]*Error, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if a.Span.File != c.Span.File {
			return a.Span.File < c.Span.File
		}
		if a.Span.Line != c.Span.Line {
			return a.Span.Line < c.Span.Line
		}
		return a.Span.Column < c.Span.Column
	})
	return out
}

// Verdict reports "ok" unless at least one error-severity diagnostic was added.
func (b *Bag) Verdict() string {
	for _, e := range b.items {
		if e.Severity == SeverityError {
			return "error"
		}
	}
	return "ok"
}

// HasErrors is a shorthand for Verdict() == "error".
func (b *Bag) HasErrors() bool {
	return b.Verdict() == "error"
}
