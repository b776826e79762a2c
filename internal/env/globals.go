package env

import (
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/types"
)

// Globals tracks module-level (and `assume`-declared) bindings, which have
// a stricter redeclaration rule than ordinary locals: a global's declared
// type is fixed the first time it is established, and any later attempt
// to give it a different declared type is an error. The current type may
// still float if the global's variance is Currently.
type Globals struct {
	scope *Scope
	fixed map[string]bool
}

// NewGlobals wraps the root scope of a module with global-redeclaration
// tracking.
func NewGlobals(root *Scope) *Globals {
	return &Globals{scope: root, fixed: make(map[string]bool)}
}

// Declare introduces or re-establishes a global. If the name was already
// fixed with a different declared type, this is an error and the existing
// slot is left untouched.
func (g *Globals) Declare(span diag.Span, name string, declaredType types.Type, variance types.Variance) *diag.Error {
	if g.fixed[name] {
		existing, _ := g.scope.Slot(name)
		if existing != nil && !types.IsEquivalent(existing.Declared, declaredType) {
			return diag.Errorf(diag.PhaseEnv, diag.ErrGlobalRedeclared, span, name, existing.Declared.String())
		}
		return nil
	}
	g.scope.Declare(name, declaredType, variance)
	g.fixed[name] = true
	return nil
}

// Scope exposes the underlying root scope for reads/writes.
func (g *Globals) Scope() *Scope { return g.scope }
