package types

import "sort"

// NormalizeUnion builds a canonical Union: flatten nested unions, collapse
// a literal subsumed by a broader variant of the same kind, collapse to
// Dynamic if present, return the single member directly if the result is a
// singleton.
func NormalizeUnion(members []Type) Type {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		if u, ok := m.(Union); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, m)
		}
	}

	for _, m := range flat {
		if _, ok := m.(Dynamic); ok {
			return Dynamic{}
		}
	}

	hasInteger, hasNumber, hasString, hasBool := false, false, false, false
	for _, m := range flat {
		switch m.(type) {
		case Integer:
			hasInteger = true
		case Number:
			hasNumber = true
		case String:
			hasString = true
		case Bool:
			hasBool = true
		}
	}

	seenBoolLits := map[bool]bool{}
	var boolLitCount int
	for _, m := range flat {
		if b, ok := m.(BoolLit); ok {
			if !seenBoolLits[b.Value] {
				seenBoolLits[b.Value] = true
				boolLitCount++
			}
		}
	}
	collapseBoolLitsToBool := boolLitCount >= 2

	kept := make([]Type, 0, len(flat))
	for _, m := range flat {
		switch v := m.(type) {
		case IntLit:
			if hasInteger || hasNumber {
				continue
			}
		case Integer:
			if hasNumber {
				continue
			}
		case StrLit:
			if hasString {
				continue
			}
		case BoolLit:
			if hasBool || collapseBoolLitsToBool {
				continue
			}
			_ = v
		}
		kept = append(kept, m)
	}
	if collapseBoolLitsToBool && !hasBool {
		kept = append(kept, Bool{})
	}

	seen := map[string]bool{}
	unique := make([]Type, 0, len(kept))
	for _, t := range kept {
		key := t.String()
		if !seen[key] {
			seen[key] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 0 {
		return Nil{}
	}
	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i].String() < unique[j].String() })
	return Union{Members: unique}
}

// WithNil returns Union(t, Nil) normalized: the type a Map read produces.
func WithNil(t Type) Type {
	return NormalizeUnion([]Type{t, Nil{}})
}

// Members returns the flattened member list of t: a singleton slice for any
// non-union type, or the union's members.
func Members(t Type) []Type {
	if u, ok := t.(Union); ok {
		return u.Members
	}
	return []Type{t}
}

// IsFalsy reports whether t can only ever be a statically-falsy value
// (Nil or BoolLit(false)), used by and/or typing and by narrowing.
func IsFalsy(t Type) bool {
	switch v := t.(type) {
	case Nil:
		return true
	case BoolLit:
		return !v.Value
	}
	return false
}

// IsTruthy reports whether t can only ever be a statically-truthy value:
// anything except Nil, Bool, BoolLit(false), or Dynamic/Union containing a
// falsy member.
func IsTruthy(t Type) bool {
	switch v := t.(type) {
	case Nil, Bool, Dynamic:
		return false
	case BoolLit:
		return v.Value
	case Union:
		for _, m := range v.Members {
			if !IsTruthy(m) {
				return false
			}
		}
	}
	return true
}

// RemoveFalsy returns t with Nil and BoolLit(false) removed from a union
// (or t unchanged/Nil if t itself is exactly one of those), the narrowing
// applied to the truthy branch of `if x then ... end`.
func RemoveFalsy(t Type) Type {
	members := Members(t)
	kept := make([]Type, 0, len(members))
	for _, m := range members {
		if IsFalsy(m) {
			continue
		}
		if b, ok := m.(Bool); ok {
			_ = b
			kept = append(kept, BoolLit{Value: true})
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return Nil{}
	}
	return NormalizeUnion(kept)
}

// FalsyPart returns the falsy-only projection of t: Union(Nil, BoolLit(false))
// intersected with t's own members, the narrowing applied to the falsy
// branch. When t has no falsy member, the whole Union(Nil, BoolLit(false))
// is returned rather than an empty result.
func FalsyPart(t Type) Type {
	members := Members(t)
	kept := make([]Type, 0, 2)
	for _, m := range members {
		switch v := m.(type) {
		case Nil:
			kept = append(kept, v)
		case Bool:
			kept = append(kept, BoolLit{Value: false})
		case BoolLit:
			if !v.Value {
				kept = append(kept, v)
			}
		case Dynamic:
			return Dynamic{}
		}
	}
	if len(kept) == 0 {
		return NormalizeUnion([]Type{Nil{}, BoolLit{Value: false}})
	}
	return NormalizeUnion(kept)
}
