package types

// Substitute replaces every UnresolvedParameter placeholder in t with the
// type it was frozen to in frozen, leaving any placeholder with no entry
// untouched: a call site specializes a function's return type against the
// parameter types it froze.
func Substitute(t Type, frozen map[int]Type) Type {
	switch v := t.(type) {
	case UnresolvedParameter:
		if r, ok := frozen[v.ID]; ok {
			return r
		}
		return v
	case Union:
		members := make([]Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = Substitute(m, frozen)
		}
		return NormalizeUnion(members)
	case Func:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Substitute(p, frozen)
		}
		var variadic Type
		if v.Variadic != nil {
			variadic = Substitute(v.Variadic, frozen)
		}
		fixed := make([]Type, len(v.Returns.Fixed))
		for i, r := range v.Returns.Fixed {
			fixed[i] = Substitute(r, frozen)
		}
		var retVariadic Type
		if v.Returns.Variadic != nil {
			retVariadic = Substitute(v.Returns.Variadic, frozen)
		}
		return Func{Params: params, Variadic: variadic, Returns: Seq{Fixed: fixed, Variadic: retVariadic}}
	}
	return t
}

// ContainsUnresolved reports whether t still carries an UnresolvedParameter
// placeholder anywhere within it — used by the Module Resolver to detect a
// module return type that was never fully resolved.
func ContainsUnresolved(t Type) bool {
	switch v := t.(type) {
	case UnresolvedParameter:
		return true
	case Union:
		for _, m := range v.Members {
			if ContainsUnresolved(m) {
				return true
			}
		}
	case Func:
		for _, p := range v.Params {
			if ContainsUnresolved(p) {
				return true
			}
		}
		if v.Variadic != nil && ContainsUnresolved(v.Variadic) {
			return true
		}
		for _, r := range v.Returns.Fixed {
			if ContainsUnresolved(r) {
				return true
			}
		}
		if v.Returns.Variadic != nil && ContainsUnresolved(v.Returns.Variadic) {
			return true
		}
	case Table:
		switch v.Shape.Kind {
		case RecordShape:
			for _, s := range v.Shape.Fields {
				if ContainsUnresolved(s.Current) {
					return true
				}
			}
		case TupleShape:
			for _, s := range v.Shape.Tuple {
				if ContainsUnresolved(s.Current) {
					return true
				}
			}
		case MapShape, ArrayShape:
			if ContainsUnresolved(v.Shape.ValType) {
				return true
			}
		}
	}
	return false
}
