// Package types implements the Type Lattice of the checker core: the set of
// types, their constructors, and the sequence-type machinery multi-valued
// expressions and function returns need. One small struct per variant,
// each with its own String(), sealed with an unexported method — this
// lattice has no generics and no unification beyond local propagation; its
// only placeholder is UnresolvedParameter, which Substitute replaces.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the sealed interface every lattice member implements.
type Type interface {
	String() string
	isType()
}

// Dynamic is the universal escape hatch: it participates in, and silently
// accepts, every operation.
type Dynamic struct{}

func (Dynamic) String() string { return "any" }
func (Dynamic) isType()        {}

// Nil is the unit/absent value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) isType()        {}

// Bool is the type of all booleans.
type Bool struct{}

func (Bool) String() string { return "boolean" }
func (Bool) isType()        {}

// BoolLit is the singleton type of a specific boolean literal.
type BoolLit struct{ Value bool }

func (b BoolLit) String() string { return strconv.FormatBool(b.Value) }
func (BoolLit) isType()          {}

// Number is the type of all numbers (integer or float).
type Number struct{}

func (Number) String() string { return "number" }
func (Number) isType()        {}

// Integer is the subtype of Number containing only integral values.
type Integer struct{}

func (Integer) String() string { return "integer" }
func (Integer) isType()        {}

// IntLit is the singleton type of a specific integer literal.
type IntLit struct{ Value int64 }

func (n IntLit) String() string { return strconv.FormatInt(n.Value, 10) }
func (IntLit) isType()          {}

// String is the type of all strings.
type String struct{}

func (String) String() string { return "string" }
func (String) isType()        {}

// StrLit is the singleton type of a specific string literal.
type StrLit struct{ Value string }

func (s StrLit) String() string { return strconv.Quote(s.Value) }
func (StrLit) isType()          {}

// TableAny is the opaque table top: no indexing is permitted without a
// downcast.
type TableAny struct{}

func (TableAny) String() string { return "table" }
func (TableAny) isType()        {}

// FuncAny is the opaque function top.
type FuncAny struct{}

func (FuncAny) String() string { return "function" }
func (FuncAny) isType()        {}

// Table is a table value with a given shape.
type Table struct{ Shape *Shape }

func (t Table) String() string { return t.Shape.String() }
func (Table) isType()          {}

// Func is a function type: positional parameters, an optional variadic
// tail, and a return sequence.
type Func struct {
	Params   []Type
	Variadic Type // nil if the function is not variadic
	Returns  Seq
}

func (f Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	if f.Variadic != nil {
		parts = append(parts, "..."+f.Variadic.String())
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Returns.String())
}
func (Func) isType() {}

// UnresolvedParameter is the placeholder a non-annotated function literal
// parameter starts as. It is unified and frozen at the first call-site.
type UnresolvedParameter struct {
	ID int
}

func (u UnresolvedParameter) String() string { return fmt.Sprintf("?param%d", u.ID) }
func (UnresolvedParameter) isType()          {}

// Union is a non-empty set of two or more variants, kept canonical: no
// nested unions, no member subsumed by a broader member of the same kind,
// never containing Dynamic.
type Union struct{ Members []Type }

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}
func (Union) isType() {}

// Seq models a multi-valued expression or function return: n fixed
// positional types plus an optional variadic tail.
type Seq struct {
	Fixed    []Type
	Variadic Type // nil if there is no variadic tail
}

// SingleSeq builds a one-element sequence, the common case for ordinary
// single-valued expressions.
func SingleSeq(t Type) Seq { return Seq{Fixed: []Type{t}} }

// At returns the type at position i (0-based), padding with Nil beyond the
// fixed prefix if there's no variadic tail: a sequence adapts to a fixed
// arity by padding missing positions with Nil.
func (s Seq) At(i int) Type {
	if i < len(s.Fixed) {
		return s.Fixed[i]
	}
	if s.Variadic != nil {
		return s.Variadic
	}
	return Nil{}
}

// First returns the type of the sequence truncated to a single value,
// the rule used whenever a multi-valued expression appears in a
// single-value context.
func (s Seq) First() Type { return s.At(0) }

// Adapt pads or truncates the sequence to exactly n fixed values.
func (s Seq) Adapt(n int) []Type {
	out := make([]Type, n)
	for i := 0; i < n; i++ {
		out[i] = s.At(i)
	}
	return out
}

func (s Seq) String() string {
	parts := make([]string, len(s.Fixed))
	for i, t := range s.Fixed {
		parts[i] = t.String()
	}
	if s.Variadic != nil {
		parts = append(parts, "..."+s.Variadic.String())
	}
	if len(parts) == 1 && s.Variadic == nil {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
