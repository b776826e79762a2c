// Package env implements the lexical Environment & Scopes component: scope
// chains for values and type aliases, slots tracking a variable's declared
// vs. current type, and flow-sensitive narrowing overlays layered on top
// of the ordinary Find-Define scope-chaining shape.
package env

import (
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/types"
)

// binding is a local variable entry: the slot plus a narrowing stack. Reads
// consult the narrowing stack top-down before falling back to the slot's
// own Current type.
type binding struct {
	slot        *types.Slot
	narrowStack []types.Type
}

// Scope is one lexical block. Scopes chain via Parent to form the lookup
// stack.
type Scope struct {
	Parent     *Scope
	vars       map[string]*binding
	aliases    map[string]types.Type
	isFuncRoot bool // true at the outermost scope of a function body
	varargs    types.Type
	hasVarargs bool
}

// NewGlobalScope creates the root scope of a module.
func NewGlobalScope() *Scope {
	return &Scope{vars: make(map[string]*binding), aliases: make(map[string]types.Type), isFuncRoot: true}
}

// Push creates a child scope.
func (s *Scope) Push() *Scope {
	return &Scope{Parent: s, vars: make(map[string]*binding), aliases: make(map[string]types.Type)}
}

// PushFunction creates a child scope that is the root of a new function
// body, optionally carrying the function's own vararg tail type. Varargs
// are lexically scoped to the innermost function.
func PushFunction(parent *Scope, varargs types.Type, hasVarargs bool) *Scope {
	s := parent.Push()
	s.isFuncRoot = true
	s.varargs = varargs
	s.hasVarargs = hasVarargs
	return s
}

// Declare introduces a slot in the current scope. Redeclaration within the
// same scope shadows — a fresh binding simply replaces the old map entry.
func (s *Scope) Declare(name string, declaredType types.Type, variance types.Variance) *types.Slot {
	slot := types.NewSlot(declaredType, variance)
	types.LockIfVar(declaredType, variance)
	s.vars[name] = &binding{slot: slot}
	return slot
}

func (s *Scope) lookup(name string) (*Scope, *binding) {
	for sc := s; sc != nil; sc = sc.Parent {
		if b, ok := sc.vars[name]; ok {
			return sc, b
		}
	}
	return nil, nil
}

// Read returns the name's current type, consulting any narrowing overlay
// first. Returns an error if undefined.
func (s *Scope) Read(span diag.Span, name string) (types.Type, *diag.Error) {
	_, b := s.lookup(name)
	if b == nil {
		return types.Dynamic{}, diag.Errorf(diag.PhaseEnv, diag.ErrUndefinedName, span, name)
	}
	if n := len(b.narrowStack); n > 0 {
		return b.narrowStack[n-1], nil
	}
	return b.slot.Current, nil
}

// Assign types a write to name: Var requires value <: declared, Const
// rejects every assignment, Currently updates Current unconditionally.
// An active narrowing overlay
// for this name is dropped, since a fresh assignment supersedes whatever
// was narrowed.
func (s *Scope) Assign(span diag.Span, name string, value types.Type) *diag.Error {
	_, b := s.lookup(name)
	if b == nil {
		return diag.Errorf(diag.PhaseEnv, diag.ErrUndefinedName, span, name)
	}
	b.narrowStack = nil
	switch b.slot.Variance {
	case types.Const:
		return diag.Errorf(diag.PhaseTable, diag.ErrConstAssign, span, name)
	case types.Var:
		if !types.IsSubtype(value, b.slot.Declared) {
			return diag.Errorf(diag.PhaseSubtype, diag.ErrNotSubtype, span, value.String(), b.slot.Declared.String())
		}
		return nil
	default: // Currently
		b.slot.Current = value
		types.LockIfVar(value, b.slot.Variance)
		return nil
	}
}

// Slot exposes the raw slot for a name, used by Globals.Declare to compare
// a redeclared global's type against the one already fixed.
func (s *Scope) Slot(name string) (*types.Slot, bool) {
	_, b := s.lookup(name)
	if b == nil {
		return nil, false
	}
	return b.slot, true
}

// Narrow installs, for the remainder of the current flow path, a refined
// view of name's current type. refined must already be a subtype of the
// slot's declared type; callers (the Statement Checker) are responsible
// for computing it that way. Narrowing a Dynamic-typed name is a no-op.
func (s *Scope) Narrow(name string, refined types.Type) {
	_, b := s.lookup(name)
	if b == nil {
		return
	}
	if _, isDynamic := b.slot.Declared.(types.Dynamic); isDynamic {
		return
	}
	b.narrowStack = append(b.narrowStack, refined)
}

// PopNarrow discards the innermost narrowing frame for name, used when a
// branch ends and its narrowing no longer applies.
func (s *Scope) PopNarrow(name string) {
	_, b := s.lookup(name)
	if b == nil || len(b.narrowStack) == 0 {
		return
	}
	b.narrowStack = b.narrowStack[:len(b.narrowStack)-1]
}

// CurrentNarrowed reports the narrowed type of name if the scope chain has
// reached it and it currently carries an overlay (the innermost one).
func (s *Scope) CurrentNarrowed(name string) (types.Type, bool) {
	_, b := s.lookup(name)
	if b == nil || len(b.narrowStack) == 0 {
		return nil, false
	}
	return b.narrowStack[len(b.narrowStack)-1], true
}

// Varargs returns the innermost enclosing function's vararg tail type.
// ok is false if we are not inside a vararg function, which the Statement
// Checker reports as a use of "..." outside the innermost function.
func (s *Scope) Varargs() (types.Type, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.isFuncRoot {
			return sc.varargs, sc.hasVarargs
		}
	}
	return nil, false
}

// DeclareAlias introduces a type alias visible in this scope and its
// children.
func (s *Scope) DeclareAlias(name string, t types.Type) {
	s.aliases[name] = t
}

// ResolveAlias looks up a type alias by walking the scope chain.
func (s *Scope) ResolveAlias(name string) (types.Type, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if t, ok := sc.aliases[name]; ok {
			return t, true
		}
	}
	return nil, false
}
