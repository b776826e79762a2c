package checker

import (
	"testing"

	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/env"
	"github.com/funvibe/luatypes/internal/types"
	"github.com/stretchr/testify/require"
)

func predicateScope(decls map[string]types.Type) (*Checker, *env.Scope) {
	c := newChecker(noModules{})
	scope := c.Globals.Scope()
	for name, t := range decls {
		scope.Declare(name, t, types.Currently)
	}
	return c, scope
}

func effectFor(t *testing.T, effects []Effect, name string) types.Type {
	t.Helper()
	for _, e := range effects {
		if e.Name == name {
			return e.Type
		}
	}
	t.Fatalf("no effect recorded for %q in %v", name, effects)
	return nil
}

func TestPredicateIdentSplitsTruthyFalsy(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
	})
	truthy, falsy := c.predicate(scope, annot.NewMapStream(), ast.NewIdent(sp(1), "x"))
	require.Equal(t, types.String{}, effectFor(t, truthy, "x"))
	require.Equal(t, types.Nil{}, effectFor(t, falsy, "x"))
}

func TestPredicateNotInvertsBranches(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
	})
	e := ast.NewUnary(sp(1), "not", ast.NewIdent(sp(1), "x"))
	truthy, falsy := c.predicate(scope, annot.NewMapStream(), e)
	require.Equal(t, types.Nil{}, effectFor(t, truthy, "x"))
	require.Equal(t, types.String{}, effectFor(t, falsy, "x"))
}

func TestPredicateAndNarrowsBothNames(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
		"y": types.Union{Members: []types.Type{types.Nil{}, types.Number{}}},
	})
	e := ast.NewBinary(sp(1), "and", ast.NewIdent(sp(1), "x"), ast.NewIdent(sp(1), "y"))
	truthy, _ := c.predicate(scope, annot.NewMapStream(), e)
	require.Equal(t, types.String{}, effectFor(t, truthy, "x"))
	require.Equal(t, types.Number{}, effectFor(t, truthy, "y"))
}

func TestPredicateOrFalsyBranchNarrowsBothNames(t *testing.T) {
	// In the branch where `x or y` was falsy, both disjuncts were falsy.
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
		"y": types.Union{Members: []types.Type{types.Nil{}, types.Number{}}},
	})
	e := ast.NewBinary(sp(1), "or", ast.NewIdent(sp(1), "x"), ast.NewIdent(sp(1), "y"))
	_, falsy := c.predicate(scope, annot.NewMapStream(), e)
	require.Equal(t, types.Nil{}, effectFor(t, falsy, "x"))
	require.Equal(t, types.Nil{}, effectFor(t, falsy, "y"))
}

func TestPredicateAndFalsyBranchKeepsOnlySharedNames(t *testing.T) {
	// not (x and y) guarantees nothing about either name alone, so a name
	// narrowed by only one conjunct carries no falsy effect.
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
		"y": types.Union{Members: []types.Type{types.Nil{}, types.Number{}}},
	})
	e := ast.NewBinary(sp(1), "and", ast.NewIdent(sp(1), "x"), ast.NewIdent(sp(1), "y"))
	_, falsy := c.predicate(scope, annot.NewMapStream(), e)
	require.Empty(t, falsy)
}

func TestPredicateTypeOfBothOrientations(t *testing.T) {
	for _, mk := range []func() *ast.Binary{
		func() *ast.Binary {
			return ast.NewBinary(sp(1), "==",
				ast.NewCall(sp(1), ast.NewIdent(sp(1), "type"), ast.NewIdent(sp(1), "x")),
				ast.NewStringLit(sp(1), "string"))
		},
		func() *ast.Binary {
			return ast.NewBinary(sp(1), "==",
				ast.NewStringLit(sp(1), "string"),
				ast.NewCall(sp(1), ast.NewIdent(sp(1), "type"), ast.NewIdent(sp(1), "x")))
		},
	} {
		c, scope := predicateScope(map[string]types.Type{
			"x": types.Union{Members: []types.Type{types.Number{}, types.String{}}},
		})
		truthy, falsy := c.predicate(scope, annot.NewMapStream(), mk())
		require.Equal(t, types.String{}, effectFor(t, truthy, "x"))
		require.Equal(t, types.Number{}, effectFor(t, falsy, "x"))
	}
}

func TestPredicateTypeOfInequalitySwapsBranches(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Number{}, types.String{}}},
	})
	e := ast.NewBinary(sp(1), "~=",
		ast.NewCall(sp(1), ast.NewIdent(sp(1), "type"), ast.NewIdent(sp(1), "x")),
		ast.NewStringLit(sp(1), "string"))
	truthy, falsy := c.predicate(scope, annot.NewMapStream(), e)
	require.Equal(t, types.Number{}, effectFor(t, truthy, "x"))
	require.Equal(t, types.String{}, effectFor(t, falsy, "x"))
}

func TestPredicateAssertTypeHelper(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Number{}, types.String{}}},
	})
	e := ast.NewCall(sp(1), ast.NewIdent(sp(1), "assert-type"),
		ast.NewIdent(sp(1), "x"), ast.NewStringLit(sp(1), "number"))
	truthy, falsy := c.predicate(scope, annot.NewMapStream(), e)
	require.Equal(t, types.Number{}, effectFor(t, truthy, "x"))
	require.Equal(t, types.String{}, effectFor(t, falsy, "x"))
}

func TestPredicateAssertNotHelperHasNegativeSign(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
	})
	e := ast.NewCall(sp(1), ast.NewIdent(sp(1), "assert-not"), ast.NewIdent(sp(1), "x"))
	truthy, falsy := c.predicate(scope, annot.NewMapStream(), e)
	require.Equal(t, types.Nil{}, effectFor(t, truthy, "x"))
	require.Equal(t, types.String{}, effectFor(t, falsy, "x"))
}

func TestApplyEffectsUndoRestoresScope(t *testing.T) {
	c, scope := predicateScope(map[string]types.Type{
		"x": types.Union{Members: []types.Type{types.Nil{}, types.String{}}},
	})
	_ = c
	undo := ApplyEffects(scope, []Effect{{Name: "x", Type: types.String{}}})
	got, _ := scope.Read(sp(1), "x")
	require.Equal(t, types.String{}, got)
	undo()
	got, _ = scope.Read(sp(1), "x")
	require.Equal(t, types.Union{Members: []types.Type{types.Nil{}, types.String{}}}, got)
}

func TestIntersectWithKeepsOnlyCompatibleMembers(t *testing.T) {
	cur := types.Union{Members: []types.Type{types.Nil{}, types.Integer{}, types.String{}}}
	require.Equal(t, types.Integer{}, intersectWith(cur, types.Number{}))
}

func TestComplementOfDropsCoveredMembers(t *testing.T) {
	cur := types.Union{Members: []types.Type{types.Nil{}, types.Integer{}, types.String{}}}
	got := complementOf(cur, types.Number{})
	require.Equal(t, types.Union{Members: []types.Type{types.Nil{}, types.String{}}}, got)
}
