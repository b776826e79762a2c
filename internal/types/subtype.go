package types

// This file implements T <: U, using a `visited []pair` co-induction guard
// to terminate on cyclic/recursive table shapes.

type pair struct {
	t, u Type
}

// IsSubtype decides T <: U; first applicable rule wins.
func IsSubtype(t, u Type) bool {
	return isSubtype(t, u, nil)
}

// IsEquivalent is mutual subtyping.
func IsEquivalent(t, u Type) bool {
	return IsSubtype(t, u) && IsSubtype(u, t)
}

func isSubtype(t, u Type, visited []pair) bool {
	// Rule 1: Dynamic absorbs and is absorbed by everything.
	if _, ok := t.(Dynamic); ok {
		return true
	}
	if _, ok := u.(Dynamic); ok {
		return true
	}

	// Co-induction: assume success if we're already comparing this exact
	// pair further up the recursion (recursive/cyclic table shapes).
	for _, p := range visited {
		if sameShapeIdentity(p.t, t) && sameShapeIdentity(p.u, u) {
			return true
		}
	}
	visited = append(visited, pair{t, u})

	// Rule 4: Union(S) <: U iff every member of S is <: U.
	if us, ok := t.(Union); ok {
		for _, m := range us.Members {
			if !isSubtype(m, u, visited) {
				return false
			}
		}
		return true
	}

	// Rule 5: T <: Union(S) iff some member of S contains T as a subtype.
	if us, ok := u.(Union); ok {
		for _, m := range us.Members {
			if isSubtype(t, m, visited) {
				return true
			}
		}
		return false
	}

	// Rule 3 + reflexivity on literal/base kinds.
	switch tt := t.(type) {
	case Nil:
		_, ok := u.(Nil)
		return ok
	case Bool:
		_, ok := u.(Bool)
		return ok
	case BoolLit:
		if ub, ok := u.(BoolLit); ok {
			return tt.Value == ub.Value
		}
		_, ok := u.(Bool)
		return ok
	case Number:
		_, ok := u.(Number)
		return ok
	case Integer:
		switch u.(type) {
		case Integer, Number:
			return true
		}
		return false
	case IntLit:
		switch uu := u.(type) {
		case IntLit:
			return tt.Value == uu.Value
		case Integer, Number:
			return true
		}
		return false
	case String:
		_, ok := u.(String)
		return ok
	case StrLit:
		if us, ok := u.(StrLit); ok {
			return tt.Value == us.Value
		}
		_, ok := u.(String)
		return ok
	case FuncAny:
		switch u.(type) {
		case FuncAny:
			return true
		}
		return false
	case TableAny:
		_, ok := u.(TableAny)
		return ok
	case Table:
		switch uu := u.(type) {
		case TableAny:
			return true // Rule 7
		case Table:
			return shapeSubtype(tt.Shape, uu.Shape, visited)
		}
		return false
	case Func:
		switch uu := u.(type) {
		case FuncAny:
			return true // Rule 7
		case Func:
			return funcSubtype(tt, uu, visited)
		}
		return false
	case UnresolvedParameter:
		if uu, ok := u.(UnresolvedParameter); ok {
			return tt.ID == uu.ID
		}
		return false
	}
	return false
}

func sameShapeIdentity(t, u Type) bool {
	tt, ok1 := t.(Table)
	uu, ok2 := u.(Table)
	if ok1 && ok2 {
		return tt.Shape == uu.Shape
	}
	return false
}

// funcSubtype is contravariant in parameters, covariant in returns, with
// variadic tails unified by element type.
func funcSubtype(t, u Func, visited []pair) bool {
	if len(t.Params) != len(u.Params) {
		if !(t.Variadic != nil || u.Variadic != nil) {
			return false
		}
	}
	n := len(t.Params)
	if len(u.Params) > n {
		n = len(u.Params)
	}
	for i := 0; i < n; i++ {
		tp := paramAt(t, i)
		up := paramAt(u, i)
		if !isSubtype(up, tp, visited) { // contravariant
			return false
		}
	}
	if t.Variadic != nil && u.Variadic != nil {
		if !isSubtype(u.Variadic, t.Variadic, visited) {
			return false
		}
	}
	if len(t.Returns.Fixed) != len(u.Returns.Fixed) {
		m := len(t.Returns.Fixed)
		if len(u.Returns.Fixed) > m {
			m = len(u.Returns.Fixed)
		}
		for i := 0; i < m; i++ {
			if !isSubtype(t.Returns.At(i), u.Returns.At(i), visited) {
				return false
			}
		}
	} else {
		for i := range t.Returns.Fixed {
			if !isSubtype(t.Returns.Fixed[i], u.Returns.Fixed[i], visited) {
				return false
			}
		}
	}
	return true
}

func paramAt(f Func, i int) Type {
	if i < len(f.Params) {
		return f.Params[i]
	}
	if f.Variadic != nil {
		return f.Variadic
	}
	return Nil{}
}

// shapeSubtype implements the structural rules per shape kind with
// variance. A Var slot requires invariant types; a Const slot allows
// covariance; Currently is treated as the current type for value
// subtyping but the declared type for slot-to-slot comparisons.
func shapeSubtype(t, u *Shape, visited []pair) bool {
	if t == u {
		return true
	}
	switch u.Kind {
	case EmptyShape:
		return true // everything admits the "no keys known yet" shape
	}
	if t.Kind == EmptyShape {
		// A table with no keys known vacuously satisfies any schema: this is
		// what lets a fresh {} literal be bound into an annotated slot.
		return true
	}
	switch u.Kind {
	case RecordShape:
		if t.Kind != RecordShape {
			return false
		}
		for name, uslot := range u.Fields {
			tslot, ok := t.Fields[name]
			if !ok {
				return false
			}
			if !slotSubtype(tslot, uslot, visited) {
				return false
			}
		}
		return true
	case TupleShape:
		if t.Kind != TupleShape {
			return false
		}
		for k, uslot := range u.Tuple {
			tslot, ok := t.Tuple[k]
			if !ok {
				return false
			}
			if !slotSubtype(tslot, uslot, visited) {
				return false
			}
		}
		return true
	case MapShape, ArrayShape:
		var tKey, tVal Type
		switch t.Kind {
		case MapShape, ArrayShape:
			tKey, tVal = t.KeyType, t.ValType
		default:
			return false
		}
		return isSubtype(tKey, u.KeyType, visited) && variantValueSubtype(tVal, u.ValType, u.Variance, visited)
	}
	return false
}

func slotSubtype(t, u *Slot, visited []pair) bool {
	switch u.Variance {
	case Var:
		return isSubtype(t.Declared, u.Declared, visited) && isSubtype(u.Declared, t.Declared, visited)
	case Const:
		return isSubtype(t.Current, u.Current, visited)
	default: // Currently
		return isSubtype(t.Current, u.Current, visited)
	}
}

func variantValueSubtype(tVal, uVal Type, variance Variance, visited []pair) bool {
	if variance == Var {
		return isSubtype(tVal, uVal, visited) && isSubtype(uVal, tVal, visited)
	}
	return isSubtype(tVal, uVal, visited)
}
