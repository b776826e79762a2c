package modules

import (
	"testing"

	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/types"
	"github.com/stretchr/testify/require"
)

// fakeLoader serves an empty parse for every module in mods, counting loads.
type fakeLoader struct {
	mods  map[string]bool
	loads map[string]int
}

func newFakeLoader(names ...string) *fakeLoader {
	l := &fakeLoader{mods: map[string]bool{}, loads: map[string]int{}}
	for _, n := range names {
		l.mods[n] = true
	}
	return l
}

func (l *fakeLoader) Load(name string) (string, *ast.Program, annot.Stream, bool) {
	if !l.mods[name] {
		return "", nil, nil, false
	}
	l.loads[name]++
	return name, ast.NewProgram(name, nil), annot.NewMapStream(), true
}

// fakeChecker stands in for the real Statement Checker: each module's
// "body" is a list of modules it requires plus the type it returns.
type fakeChecker struct {
	resolver *Resolver
	requires map[string][]string
	returns  map[string]types.Type
	checks   map[string]int
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{
		requires: map[string][]string{},
		returns:  map[string]types.Type{},
		checks:   map[string]int{},
	}
}

func (f *fakeChecker) CheckModule(file string, prog *ast.Program, annots annot.Stream) ModuleResult {
	f.checks[file]++
	bag := diag.NewBag()
	for i, dep := range f.requires[file] {
		f.resolver.ResolveLiteral(bag, diag.Span{File: file, Line: i + 1, Column: 1}, dep)
	}
	ret := types.Seq{}
	if t, ok := f.returns[file]; ok {
		ret = types.SingleSeq(t)
	}
	return ModuleResult{Return: ret, Bag: bag}
}

func newTestResolver(loader FileLoader) (*Resolver, *fakeChecker) {
	chk := newFakeChecker()
	r := NewResolver(loader, chk)
	chk.resolver = r
	return r, chk
}

func site(line int) diag.Span { return diag.Span{File: "root", Line: line, Column: 1} }

func TestResolveLiteralCachesResult(t *testing.T) {
	loader := newFakeLoader("m")
	r, chk := newTestResolver(loader)
	chk.returns["m"] = types.IntLit{Value: 42}

	bag := diag.NewBag()
	first := r.ResolveLiteral(bag, site(1), "m")
	second := r.ResolveLiteral(bag, site(2), "m")

	require.Equal(t, types.IntLit{Value: 42}, first)
	require.Equal(t, first, second)
	require.Equal(t, 1, loader.loads["m"])
	require.Equal(t, 1, chk.checks["m"])
	require.Equal(t, "ok", bag.Verdict())
}

func TestResolveLiteralNotFound(t *testing.T) {
	r, _ := newTestResolver(newFakeLoader())
	bag := diag.NewBag()
	got := r.ResolveLiteral(bag, site(1), "missing")
	require.Equal(t, types.Dynamic{}, got)
	require.Len(t, bag.All(), 1)
	require.Equal(t, diag.ErrUnresolvedImport, bag.All()[0].Code)
}

func TestResolveLiteralRejectsFalseReturningModule(t *testing.T) {
	r, chk := newTestResolver(newFakeLoader("m"))
	chk.returns["m"] = types.BoolLit{Value: false}

	bag := diag.NewBag()
	got := r.ResolveLiteral(bag, site(1), "m")
	require.Equal(t, types.Dynamic{}, got)
	require.Equal(t, diag.ErrFalseReturningMod, bag.All()[0].Code)

	// The failure is cached as Dynamic: no second error on re-resolution.
	bag2 := diag.NewBag()
	require.Equal(t, types.Dynamic{}, r.ResolveLiteral(bag2, site(2), "m"))
	require.Empty(t, bag2.All())
}

func TestResolveLiteralRejectsUnresolvedReturnType(t *testing.T) {
	r, chk := newTestResolver(newFakeLoader("m"))
	chk.returns["m"] = types.Func{
		Params:  []types.Type{types.UnresolvedParameter{ID: 1}},
		Returns: types.SingleSeq(types.UnresolvedParameter{ID: 1}),
	}

	bag := diag.NewBag()
	got := r.ResolveLiteral(bag, site(1), "m")
	require.Equal(t, types.Dynamic{}, got)
	require.Equal(t, diag.ErrUnresolvedReturn, bag.All()[0].Code)
}

func TestResolveLiteralCycleYieldsSingleErrorAtFirstSite(t *testing.T) {
	r, chk := newTestResolver(newFakeLoader("a", "b"))
	chk.requires["a"] = []string{"b"}
	chk.requires["b"] = []string{"a"}

	bag := diag.NewBag()
	r.ResolveLiteral(bag, site(7), "a")

	diags := bag.All()
	require.Len(t, diags, 1)
	require.Equal(t, diag.ErrRecursiveImport, diags[0].Code)
	// Keyed to the first require site of the module that closed the cycle.
	require.Equal(t, site(7), diags[0].Span)
}

func TestResolveLiteralDiamondChecksEachModuleOnce(t *testing.T) {
	loader := newFakeLoader("a", "b", "c", "d")
	r, chk := newTestResolver(loader)
	chk.requires["a"] = []string{"b", "c"}
	chk.requires["b"] = []string{"d"}
	chk.requires["c"] = []string{"d"}
	chk.returns["d"] = types.String{}

	bag := diag.NewBag()
	r.ResolveLiteral(bag, site(1), "a")

	require.Equal(t, "ok", bag.Verdict())
	require.Empty(t, bag.All())
	require.Equal(t, 1, chk.checks["d"])
	require.Equal(t, 1, loader.loads["d"])
}

func TestResolveLiteralModuleWithoutReturnYieldsNil(t *testing.T) {
	r, _ := newTestResolver(newFakeLoader("m"))
	bag := diag.NewBag()
	got := r.ResolveLiteral(bag, site(1), "m")
	require.Equal(t, types.Nil{}, got)
	require.Empty(t, bag.All())
}

func TestResolveNonLiteralWarnsAndYieldsDynamic(t *testing.T) {
	r, _ := newTestResolver(newFakeLoader())
	bag := diag.NewBag()
	got := r.ResolveNonLiteral(bag, site(1))
	require.Equal(t, types.Dynamic{}, got)
	require.Len(t, bag.All(), 1)
	require.Equal(t, diag.SeverityWarning, bag.All()[0].Severity)
	require.Equal(t, "ok", bag.Verdict())
}

func TestResolveLiteralBubblesModuleDiagnostics(t *testing.T) {
	// A module that itself requires a missing module surfaces that error to
	// the requiring side's bag.
	r, chk := newTestResolver(newFakeLoader("m"))
	chk.requires["m"] = []string{"ghost"}

	bag := diag.NewBag()
	r.ResolveLiteral(bag, site(1), "m")
	require.Equal(t, "error", bag.Verdict())
	require.Equal(t, diag.ErrUnresolvedImport, bag.All()[0].Code)
}
