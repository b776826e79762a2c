package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeUnionFlattensNested(t *testing.T) {
	inner := Union{Members: []Type{String{}, Bool{}}}
	got := NormalizeUnion([]Type{inner, Number{}})
	u, ok := got.(Union)
	require.True(t, ok)
	require.Len(t, u.Members, 3)
}

func TestNormalizeUnionDynamicAbsorbsEverything(t *testing.T) {
	require.Equal(t, Dynamic{}, NormalizeUnion([]Type{String{}, Dynamic{}, Number{}}))
}

func TestNormalizeUnionLiteralSubsumedByBaseKind(t *testing.T) {
	require.Equal(t, Integer{}, NormalizeUnion([]Type{IntLit{Value: 1}, Integer{}}))
	require.Equal(t, Number{}, NormalizeUnion([]Type{IntLit{Value: 1}, Number{}}))
	require.Equal(t, String{}, NormalizeUnion([]Type{StrLit{Value: "a"}, String{}}))
}

func TestNormalizeUnionTwoDistinctBoolLitsCollapseToBool(t *testing.T) {
	require.Equal(t, Bool{}, NormalizeUnion([]Type{BoolLit{Value: true}, BoolLit{Value: false}}))
}

func TestNormalizeUnionSingletonUnwraps(t *testing.T) {
	require.Equal(t, Number{}, NormalizeUnion([]Type{Number{}, Number{}}))
}

func TestNormalizeUnionEmptyIsNil(t *testing.T) {
	require.Equal(t, Nil{}, NormalizeUnion(nil))
}

func TestWithNilAddsNilOnce(t *testing.T) {
	got := WithNil(Nil{})
	require.Equal(t, Nil{}, got)
}

func TestIsFalsyAndIsTruthy(t *testing.T) {
	require.True(t, IsFalsy(Nil{}))
	require.True(t, IsFalsy(BoolLit{Value: false}))
	require.False(t, IsFalsy(BoolLit{Value: true}))
	require.True(t, IsTruthy(BoolLit{Value: true}))
	require.False(t, IsTruthy(Nil{}))
	require.False(t, IsTruthy(Bool{}))
	require.False(t, IsTruthy(Dynamic{}))
}

func TestRemoveFalsyStripsNilAndFalse(t *testing.T) {
	u := Union{Members: []Type{Nil{}, String{}, BoolLit{Value: false}}}
	require.Equal(t, String{}, RemoveFalsy(u))
}

func TestRemoveFalsyBoolBecomesTrueLiteral(t *testing.T) {
	require.Equal(t, BoolLit{Value: true}, RemoveFalsy(Bool{}))
}

func TestFalsyPartKeepsOnlyFalsyMembers(t *testing.T) {
	u := Union{Members: []Type{Nil{}, String{}, Bool{}}}
	got := FalsyPart(u)
	require.Equal(t, Union{Members: []Type{BoolLit{Value: false}, Nil{}}}, got)
}

func TestFalsyPartOfDynamicIsDynamic(t *testing.T) {
	require.Equal(t, Dynamic{}, FalsyPart(Dynamic{}))
}

func TestFalsyPartOfAlwaysTruthyIsStillNilOrFalse(t *testing.T) {
	// Even a type with no falsy members yields the two statically-possible
	// falsy values: the condition could still have been false at runtime
	// only if the static type admits it, but FalsyPart never returns empty.
	got := FalsyPart(String{})
	require.Equal(t, Union{Members: []Type{BoolLit{Value: false}, Nil{}}}, got)
}
