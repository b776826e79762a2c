package checker

import (
	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/env"
	"github.com/funvibe/luatypes/internal/types"
)

// Effect is one narrowing refinement a predicate implies for a single name
// if that predicate holds. The Statement Checker applies a branch's Effects
// to the scope before walking that branch's body.
type Effect struct {
	Name string
	Type types.Type
}

// baseKindFor maps a type(x)-result literal to the base kind it narrows to.
func baseKindFor(lit string) (types.Type, bool) {
	switch lit {
	case config.TypeOfNumber:
		return types.Number{}, true
	case config.TypeOfString:
		return types.String{}, true
	case config.TypeOfBoolean:
		return types.Bool{}, true
	case config.TypeOfTable:
		return types.TableAny{}, true
	case config.TypeOfFunction:
		return types.FuncAny{}, true
	case config.TypeOfNil:
		return types.Nil{}, true
	}
	return nil, false
}

func intersectWith(current, narrowed types.Type) types.Type {
	if types.IsSubtype(current, narrowed) {
		return current
	}
	kept := make([]types.Type, 0)
	for _, m := range types.Members(current) {
		if types.IsSubtype(m, narrowed) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return narrowed
	}
	return types.NormalizeUnion(kept)
}

func complementOf(current, narrowed types.Type) types.Type {
	kept := make([]types.Type, 0)
	for _, m := range types.Members(current) {
		if !types.IsSubtype(m, narrowed) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return types.Nil{}
	}
	return types.NormalizeUnion(kept)
}

// predicate analyses an expression used in boolean context and returns the
// effects that hold in the truthy and the falsy branch respectively.
func (c *Checker) predicate(scope *env.Scope, annots annot.Stream, e ast.Expression) (truthy, falsy []Effect) {
	switch n := e.(type) {
	case *ast.Ident:
		cur, err := scope.Read(n.Span(), n.Name)
		if err != nil {
			return nil, nil
		}
		return []Effect{{n.Name, types.RemoveFalsy(cur)}}, []Effect{{n.Name, types.FalsyPart(cur)}}

	case *ast.Unary:
		if n.Op == "not" {
			t, f := c.predicate(scope, annots, n.Operand)
			return f, t
		}

	case *ast.Binary:
		switch n.Op {
		case "and":
			lt, lf := c.predicate(scope, annots, n.Left)
			rt, rf := c.predicate(scope, annots, n.Right)
			return mergeSequential(lt, rt), mergeDisjoint(lf, rf)
		case "or":
			lt, lf := c.predicate(scope, annots, n.Left)
			rt, rf := c.predicate(scope, annots, n.Right)
			return mergeDisjoint(lt, rt), mergeSequential(lf, rf)
		case "==", "~=":
			if name, lit, ok := typeOfEquality(n); ok {
				base, known := baseKindFor(lit)
				if !known {
					return nil, nil // diagnosed separately by the Expression Checker
				}
				cur, err := scope.Read(n.Span(), name)
				if err != nil {
					return nil, nil
				}
				truthyNarrow := intersectWith(cur, base)
				falsyNarrow := complementOf(cur, base)
				if n.Op == "~=" {
					truthyNarrow, falsyNarrow = falsyNarrow, truthyNarrow
				}
				return []Effect{{name, truthyNarrow}}, []Effect{{name, falsyNarrow}}
			}
		}

	case *ast.Call:
		if id, ok := n.Callee.(*ast.Ident); ok && len(n.Args) >= 1 {
			if name, ok := identName(n.Args[0]); ok {
				switch id.Name {
				case config.NarrowAssertType:
					if len(n.Args) >= 2 {
						if lit, ok := stringLitValue(n.Args[1]); ok {
							if base, known := baseKindFor(lit); known {
								cur, err := scope.Read(n.Span(), name)
								if err == nil {
									return []Effect{{name, intersectWith(cur, base)}}, []Effect{{name, complementOf(cur, base)}}
								}
							}
						}
					}
				case config.NarrowAssertNot:
					cur, err := scope.Read(n.Span(), name)
					if err == nil {
						return []Effect{{name, types.FalsyPart(cur)}}, []Effect{{name, types.RemoveFalsy(cur)}}
					}
				}
			}
		}
	}
	return nil, nil
}

func identName(e ast.Expression) (string, bool) {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name, true
	}
	return "", false
}

func stringLitValue(e ast.Expression) (string, bool) {
	if s, ok := e.(*ast.StringLit); ok {
		return s.Value, true
	}
	return "", false
}

// typeOfEquality recognises `type(e) == "lit"` or `"lit" == type(e)`,
// returning the narrowed name and literal.
func typeOfEquality(n *ast.Binary) (name string, lit string, ok bool) {
	if name, lit, ok = asTypeOfCall(n.Left, n.Right); ok {
		return
	}
	return asTypeOfCall(n.Right, n.Left)
}

func asTypeOfCall(call, other ast.Expression) (string, string, bool) {
	c, ok := call.(*ast.Call)
	if !ok {
		return "", "", false
	}
	id, ok := c.Callee.(*ast.Ident)
	if !ok || id.Name != "type" || len(c.Args) != 1 {
		return "", "", false
	}
	name, ok := identName(c.Args[0])
	if !ok {
		return "", "", false
	}
	lit, ok := stringLitValue(other)
	if !ok {
		return "", "", false
	}
	return name, lit, true
}

// mergeSequential combines the effects of two predicates ANDed together:
// both hold simultaneously, so a name appearing in both is narrowed to the
// intersection.
func mergeSequential(a, b []Effect) []Effect {
	out := append([]Effect{}, a...)
	for _, eb := range b {
		merged := false
		for i, ea := range out {
			if ea.Name == eb.Name {
				out[i].Type = intersectWith(ea.Type, eb.Type)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, eb)
		}
	}
	return out
}

// mergeDisjoint combines the effects of two predicates ORed together in a
// branch where only one of them need hold: a name appearing in both is
// widened to the union.
func mergeDisjoint(a, b []Effect) []Effect {
	byName := map[string][]types.Type{}
	order := []string{}
	for _, e := range a {
		if _, ok := byName[e.Name]; !ok {
			order = append(order, e.Name)
		}
		byName[e.Name] = append(byName[e.Name], e.Type)
	}
	bNames := map[string]bool{}
	for _, e := range b {
		bNames[e.Name] = true
	}
	out := []Effect{}
	// Only keep names present on both sides (a disjunction only guarantees
	// a refinement for a name if both disjuncts narrow it); union their
	// types.
	for _, name := range order {
		if !bNames[name] {
			continue
		}
		types_ := append([]types.Type{}, byName[name]...)
		for _, e := range b {
			if e.Name == name {
				types_ = append(types_, e.Type)
			}
		}
		out = append(out, Effect{Name: name, Type: types.NormalizeUnion(types_)})
	}
	return out
}

// ApplyEffects narrows each name in effects and returns a closure that
// undoes exactly those narrowings, for use when a branch ends.
func ApplyEffects(scope *env.Scope, effects []Effect) (undo func()) {
	for _, e := range effects {
		scope.Narrow(e.Name, e.Type)
	}
	return func() {
		for _, e := range effects {
			scope.PopNarrow(e.Name)
		}
	}
}
