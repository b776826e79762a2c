package modules

import (
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/types"
	"github.com/google/uuid"
)

// Resolver implements the Module Resolver. One Resolver is shared across an
// entire check run: the module cache is a shared resource owned by the
// driver.
type Resolver struct {
	Loader    FileLoader
	Checker   Typechecker
	entries   map[string]*ModuleEntry
	Verbose   bool
	TraceLog  func(format string, args ...interface{}) // optional, used only when Verbose
}

// NewResolver builds a Resolver over the given loader and typechecker
// callback.
func NewResolver(loader FileLoader, checker Typechecker) *Resolver {
	return &Resolver{Loader: loader, Checker: checker, entries: make(map[string]*ModuleEntry)}
}

func (r *Resolver) trace(format string, args ...interface{}) {
	if r.Verbose && r.TraceLog != nil {
		r.TraceLog(format, args...)
	}
}

// ResolveLiteral resolves a require() call whose argument was the literal
// string name: cache hit, recursive-import rejection, or a fresh resolve
// that checks the module and validates its returned type.
func (r *Resolver) ResolveLiteral(bag *diag.Bag, span diag.Span, name string) types.Type {
	if entry, ok := r.entries[name]; ok {
		switch entry.State {
		case StateDone:
			r.trace("module %q: cache hit (trace %s)", name, entry.TraceID)
			return entry.Return
		case StateInProgress:
			bag.Errorf(diag.PhaseModule, diag.ErrRecursiveImport, entry.FirstSite)
			r.trace("module %q: recursive import detected (trace %s)", name, entry.TraceID)
			return types.Dynamic{}
		}
	}

	entry := &ModuleEntry{State: StateInProgress, FirstSite: span, TraceID: uuid.New()}
	r.entries[name] = entry
	r.trace("module %q: resolving (trace %s)", name, entry.TraceID)

	file, program, annots, ok := r.Loader.Load(name)
	if !ok {
		bag.Errorf(diag.PhaseModule, diag.ErrUnresolvedImport, span)
		entry.State = StateDone
		entry.Return = types.Dynamic{}
		return types.Dynamic{}
	}

	result := r.Checker.CheckModule(file, program, annots)
	for _, e := range result.Bag.All() {
		bag.Add(e)
	}

	retType := result.Return.First()
	if lit, ok := retType.(types.BoolLit); ok && !lit.Value {
		bag.Errorf(diag.PhaseModule, diag.ErrFalseReturningMod, span)
		entry.State = StateDone
		entry.Return = types.Dynamic{}
		return types.Dynamic{}
	}
	if types.ContainsUnresolved(retType) {
		bag.Errorf(diag.PhaseModule, diag.ErrUnresolvedReturn, span)
		entry.State = StateDone
		entry.Return = types.Dynamic{}
		return types.Dynamic{}
	}

	entry.State = StateDone
	entry.Return = retType
	return retType
}

// ResolveNonLiteral handles a require() call whose argument is not a
// literal string: a warning and a Dynamic result.
func (r *Resolver) ResolveNonLiteral(bag *diag.Bag, span diag.Span) types.Type {
	bag.Warnf(diag.PhaseModule, diag.WarnCannotResolveImport, span)
	return types.Dynamic{}
}
