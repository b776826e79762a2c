package types

import "github.com/funvibe/luatypes/internal/diag"

// This file implements table adaptation: the rules by which a shape is
// refined in place to admit a newly observed key, and the rule that a
// shape held in a Var slot may never be adapted.

func literalStringKey(t Type) (string, bool) {
	if s, ok := t.(StrLit); ok {
		return s.Value, true
	}
	return "", false
}

func literalIntKey(t Type) (int64, bool) {
	if n, ok := t.(IntLit); ok && n.Value > 0 {
		return n.Value, true
	}
	return 0, false
}

// LockIfVar marks t's shape as fixed when it is being bound into a Var slot.
func LockIfVar(t Type, v Variance) {
	if v != Var {
		return
	}
	if tbl, ok := t.(Table); ok {
		tbl.Shape.Lock()
	}
}

func cannotAdapt(span diag.Span, t Type, key Type) *diag.Error {
	return diag.Errorf(diag.PhaseTable, diag.ErrCannotAdapt, span, t.String(), key.String())
}

// IndexRead types a read t[k] against the shape, adapting where the shape's
// locked state allows it.
func (s *Shape) IndexRead(span diag.Span, keyType Type) (Type, *diag.Error) {
	switch s.Kind {
	case EmptyShape:
		if s.Locked {
			return Dynamic{}, cannotAdapt(span, Table{Shape: s}, keyType)
		}
		s.adaptEmptyForKey(keyType)
		if s.Kind != EmptyShape {
			return s.IndexRead(span, keyType)
		}
		return Nil{}, nil

	case RecordShape:
		if name, ok := literalStringKey(keyType); ok {
			if slot, found := s.Fields[name]; found {
				return slot.Current, nil
			}
			if s.Locked {
				return Nil{}, nil
			}
			s.Fields[name] = NewSlot(Nil{}, Currently)
			return Nil{}, nil
		}
		if len(s.Fields) == 1 {
			for _, slot := range s.Fields {
				return slot.Current, nil
			}
		}
		return Dynamic{}, diag.Errorf(diag.PhaseTable, diag.ErrAmbiguousKey, span, keyType.String(), s.String())

	case TupleShape:
		if n, ok := literalIntKey(keyType); ok {
			if slot, found := s.Tuple[n]; found {
				return slot.Current, nil
			}
			if s.Locked {
				return Nil{}, nil
			}
			s.Tuple[n] = NewSlot(Nil{}, Currently)
			return Nil{}, nil
		}
		if len(s.Tuple) == 1 {
			for _, slot := range s.Tuple {
				return slot.Current, nil
			}
		}
		return Dynamic{}, diag.Errorf(diag.PhaseTable, diag.ErrAmbiguousKey, span, keyType.String(), s.String())

	case MapShape, ArrayShape:
		if _, ok := keyType.(Dynamic); !ok {
			if !IsSubtype(keyType, s.KeyType) && !IsSubtype(s.KeyType, keyType) {
				return Dynamic{}, diag.Errorf(diag.PhaseTable, diag.ErrCannotIndex, span, Table{Shape: s}.String())
			}
		}
		return WithNil(s.ValType), nil
	}
	return Dynamic{}, nil
}

// IndexWrite types an assignment t[k] = v against the shape.
func (s *Shape) IndexWrite(span diag.Span, keyType, valueType Type) *diag.Error {
	switch s.Kind {
	case EmptyShape:
		if s.Locked {
			return cannotAdapt(span, Table{Shape: s}, keyType)
		}
		s.adaptEmptyForWrite(keyType, valueType)
		return nil

	case RecordShape:
		name, isStr := literalStringKey(keyType)
		if !isStr {
			if s.Locked {
				return cannotAdapt(span, Table{Shape: s}, keyType)
			}
			newKeyKind := Type(String{})
			if _, dyn := keyType.(Dynamic); !dyn && IsSubtype(keyType, Integer{}) {
				newKeyKind = Integer{}
			}
			s.widenRecordOrTupleToMap(newKeyKind, valueType)
			return nil
		}
		if slot, found := s.Fields[name]; found {
			return assignSlot(span, name, slot, valueType)
		}
		if s.Locked {
			return cannotAdapt(span, Table{Shape: s}, keyType)
		}
		s.Fields[name] = NewSlot(valueType, Currently)
		return nil

	case TupleShape:
		n, isInt := literalIntKey(keyType)
		if !isInt {
			if s.Locked {
				return cannotAdapt(span, Table{Shape: s}, keyType)
			}
			newKeyKind := Type(Integer{})
			if _, dyn := keyType.(Dynamic); !dyn && IsSubtype(keyType, String{}) {
				newKeyKind = String{}
			}
			s.widenRecordOrTupleToMap(newKeyKind, valueType)
			return nil
		}
		if slot, found := s.Tuple[n]; found {
			return assignSlot(span, keyType.String(), slot, valueType)
		}
		if s.Locked {
			return cannotAdapt(span, Table{Shape: s}, keyType)
		}
		s.Tuple[n] = NewSlot(valueType, Currently)
		return nil

	case MapShape, ArrayShape:
		if _, isNil := valueType.(Nil); isNil {
			// Writing Nil is always allowed: understood as a delete.
			return nil
		}
		if !IsSubtype(keyType, s.KeyType) {
			if s.Locked {
				return cannotAdapt(span, Table{Shape: s}, keyType)
			}
			newKey := keyType
			if _, isStrLit := keyType.(StrLit); isStrLit && s.Kind == ArrayShape {
				newKey = String{}
			}
			s.KeyType = NormalizeUnion([]Type{s.KeyType, newKey})
			s.Kind = MapShape
		}
		switch s.Variance {
		case Const:
			return diag.Errorf(diag.PhaseTable, diag.ErrConstAssign, span, "["+keyType.String()+"]")
		case Var:
			if !IsSubtype(valueType, s.ValType) {
				return diag.Errorf(diag.PhaseSubtype, diag.ErrNotSubtype, span, valueType.String(), s.ValType.String())
			}
		case Currently:
			if s.Locked {
				if !IsSubtype(valueType, s.ValType) {
					return diag.Errorf(diag.PhaseSubtype, diag.ErrNotSubtype, span, valueType.String(), s.ValType.String())
				}
			} else {
				s.ValType = NormalizeUnion([]Type{s.ValType, valueType})
			}
		}
		return nil
	}
	return nil
}

func assignSlot(span diag.Span, name string, slot *Slot, value Type) *diag.Error {
	switch slot.Variance {
	case Const:
		return diag.Errorf(diag.PhaseTable, diag.ErrConstAssign, span, name)
	case Var:
		if !IsSubtype(value, slot.Declared) {
			return diag.Errorf(diag.PhaseSubtype, diag.ErrNotSubtype, span, value.String(), slot.Declared.String())
		}
		return nil
	default: // Currently
		slot.Current = value
		return nil
	}
}

func (s *Shape) adaptEmptyForKey(keyType Type) {
	if name, ok := literalStringKey(keyType); ok {
		s.Kind = RecordShape
		s.Fields = map[string]*Slot{name: NewSlot(Nil{}, Currently)}
		return
	}
	if n, ok := literalIntKey(keyType); ok {
		s.Kind = TupleShape
		s.Tuple = map[int64]*Slot{n: NewSlot(Nil{}, Currently)}
		return
	}
	s.Kind = MapShape
	s.KeyType = keyType
	s.ValType = Dynamic{}
}

func (s *Shape) adaptEmptyForWrite(keyType, valueType Type) {
	if name, ok := literalStringKey(keyType); ok {
		s.Kind = RecordShape
		s.Fields = map[string]*Slot{name: NewSlot(valueType, Currently)}
		return
	}
	if n, ok := literalIntKey(keyType); ok {
		s.Kind = TupleShape
		s.Tuple = map[int64]*Slot{n: NewSlot(valueType, Currently)}
		return
	}
	s.Kind = MapShape
	s.KeyType = keyType
	s.ValType = valueType
}

// widenRecordOrTupleToMap implements the rule that when a shape must admit
// both integer-like and string-like keys, it widens to Map(Integer|String, V).
func (s *Shape) widenRecordOrTupleToMap(newKeyKind Type, newValue Type) {
	values := []Type{newValue}
	var existingKeyKind Type
	switch s.Kind {
	case RecordShape:
		existingKeyKind = String{}
		for _, slot := range s.Fields {
			values = append(values, slot.Current)
		}
	case TupleShape:
		existingKeyKind = Integer{}
		for _, slot := range s.Tuple {
			values = append(values, slot.Current)
		}
	case ArrayShape:
		existingKeyKind = Integer{}
		values = append(values, s.ValType)
	}
	s.Kind = MapShape
	s.KeyType = NormalizeUnion([]Type{existingKeyKind, newKeyKind})
	s.ValType = NormalizeUnion(values)
	s.Fields = nil
	s.Tuple = nil
}
