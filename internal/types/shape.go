package types

import (
	"fmt"
	"sort"
	"strings"
)

// Variance governs whether and how a slot's or shape's type may change
// after declaration.
type Variance int

const (
	// Currently is mutable, and its current type floats: reassigning a
	// different type changes the slot's type.
	Currently Variance = iota
	// Const is read-only: no assignment is ever allowed.
	Const
	// Var is mutable but fixed at declaration: assignments must be subtypes.
	Var
)

func (v Variance) String() string {
	switch v {
	case Const:
		return "const"
	case Var:
		return "var"
	default:
		return "currently"
	}
}

// Slot is a table field or a variable binding: a declared type, a current
// type, and the variance governing how Current may evolve.
type Slot struct {
	Declared Type
	Current  Type
	Variance Variance
}

// NewSlot builds a slot whose Current starts equal to Declared.
func NewSlot(declared Type, variance Variance) *Slot {
	return &Slot{Declared: declared, Current: declared, Variance: variance}
}

// ShapeKind names which of the five table shapes a Shape is.
type ShapeKind int

const (
	EmptyShape ShapeKind = iota
	RecordShape
	TupleShape
	MapShape
	ArrayShape
)

// Shape is the mutable structural description of a table value: its
// key/value schema and per-slot or per-shape variance. Kept as a pointer
// and mutated in place by adaptation, so two Type values that alias the
// same table value share the same *Shape and observe each other's
// adaptations; pointer identity doubles as shape identity for the
// Var-slot locking rule.
type Shape struct {
	Kind ShapeKind

	// RecordShape: string-literal key -> slot.
	Fields map[string]*Slot
	// TupleShape: positive integer-literal key -> slot.
	Tuple map[int64]*Slot

	// MapShape / ArrayShape: homogeneous key/value types plus one variance
	// for the whole shape.
	KeyType  Type
	ValType  Type
	Variance Variance

	// Locked is set once this shape is observed stored in a Var slot:
	// adaptation is forbidden on a table value held in a VAR slot. It is
	// never cleared.
	Locked bool
}

// NewEmptyShape builds the `{}` shape with no keys known yet.
func NewEmptyShape() *Shape {
	return &Shape{Kind: EmptyShape}
}

// NewArrayShape builds `{V}`.
func NewArrayShape(val Type, variance Variance) *Shape {
	return &Shape{Kind: ArrayShape, KeyType: Integer{}, ValType: val, Variance: variance}
}

// NewMapShape builds `{[K]=V}`.
func NewMapShape(key, val Type, variance Variance) *Shape {
	return &Shape{Kind: MapShape, KeyType: key, ValType: val, Variance: variance}
}

func (s *Shape) String() string {
	switch s.Kind {
	case EmptyShape:
		return "{}"
	case ArrayShape:
		return fmt.Sprintf("{%s}", s.ValType.String())
	case MapShape:
		return fmt.Sprintf("{[%s]=%s}", s.KeyType.String(), s.ValType.String())
	case RecordShape:
		keys := make([]string, 0, len(s.Fields))
		for k := range s.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, s.Fields[k].Current.String()))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case TupleShape:
		keys := make([]int64, 0, len(s.Tuple))
		for k := range s.Tuple {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, s.Tuple[k].Current.String())
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	}
	return "{?}"
}

// Lock marks the shape as fixed: called whenever a table value is bound
// into a Var slot, whose shape must never change afterwards.
func (s *Shape) Lock() { s.Locked = true }
