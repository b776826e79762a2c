package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func at(file string, line int) Span { return Span{File: file, Line: line, Column: 1} }

func TestBagDeduplicatesByPositionAndCode(t *testing.T) {
	b := NewBag()
	b.Errorf(PhaseExpr, ErrNotCallable, at("a", 3), "nil")
	b.Errorf(PhaseExpr, ErrNotCallable, at("a", 3), "nil")
	require.Len(t, b.All(), 1)
}

func TestBagKeepsDistinctCodesAtSamePosition(t *testing.T) {
	b := NewBag()
	b.Errorf(PhaseExpr, ErrNotCallable, at("a", 3), "nil")
	b.Errorf(PhaseExpr, ErrBadArity, at("a", 3), 1, 2)
	require.Len(t, b.All(), 2)
}

func TestBagOrdersByFileThenPosition(t *testing.T) {
	b := NewBag()
	b.Errorf(PhaseExpr, ErrNotCallable, at("b", 1), "nil")
	b.Errorf(PhaseExpr, ErrNotCallable, at("a", 9), "nil")
	b.Errorf(PhaseExpr, ErrBadArity, at("a", 2), 1, 2)

	all := b.All()
	require.Equal(t, at("a", 2), all[0].Span)
	require.Equal(t, at("a", 9), all[1].Span)
	require.Equal(t, at("b", 1), all[2].Span)
}

func TestVerdictIgnoresWarnings(t *testing.T) {
	b := NewBag()
	b.Warnf(PhaseModule, WarnCannotResolveImport, at("a", 1))
	require.Equal(t, "ok", b.Verdict())
	require.False(t, b.HasErrors())

	b.Errorf(PhaseExpr, ErrNotCallable, at("a", 2), "nil")
	require.Equal(t, "error", b.Verdict())
	require.True(t, b.HasErrors())
}

func TestErrorRendersSpanCodeAndTemplate(t *testing.T) {
	e := Errorf(PhaseEnv, ErrUndefinedName, Span{File: "mod", Line: 4, Column: 7}, "x")
	require.Equal(t, `mod:4:7: [E001] undefined name "x"`, e.Error())
}

func TestErrorWithoutSpanOmitsPosition(t *testing.T) {
	e := Errorf(PhaseEnv, ErrUndefinedName, Span{}, "x")
	require.Equal(t, `[E001] undefined name "x"`, e.Error())
}

func TestAddNilIsANoOp(t *testing.T) {
	b := NewBag()
	b.Add(nil)
	require.Empty(t, b.All())
}

func TestEveryCodeHasAMessageTemplate(t *testing.T) {
	codes := []Code{
		ErrUndefinedName, ErrGlobalRedeclared, ErrNotSubtype,
		ErrBadOperand, ErrMixedOrdering, ErrBadLength,
		ErrCannotIndex, ErrCannotAdapt, ErrCannotDowncast, ErrAmbiguousKey, ErrConstAssign,
		ErrNotCallable, ErrBadArity,
		ErrUnknownAlias, ErrRecursiveAlias, ErrAliasRedefined, ErrUnknownAssume,
		ErrVarargsOutsideFunction, ErrOutOfScope,
		ErrRecursiveImport, ErrUnresolvedImport, ErrUnresolvedReturn, ErrFalseReturningMod,
		WarnCannotResolveImport, ErrFrozenParam, ErrBadTypeOfLiteral,
	}
	for _, c := range codes {
		require.Contains(t, messages, c, "code %s has no template", c)
	}
}
