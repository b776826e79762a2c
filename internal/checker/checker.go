// Package checker implements the Expression Checker and Statement Checker:
// the components that walk a parsed program and type every operation,
// assignment, and call under the gradual type system of internal/types.
// Concerns are split across expr.go/stmt.go/narrow.go, with a walker that
// holds a diagnostics bag and the lexical environment alongside it.
package checker

import (
	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/env"
	"github.com/funvibe/luatypes/internal/modules"
	"github.com/funvibe/luatypes/internal/types"
)

// Checker drives the Expression Checker and Statement Checker over one
// module's AST, sharing a Module Resolver across every module reachable
// from the entry point: the module cache is a shared resource owned by the
// driver for the whole run.
type Checker struct {
	Bag      *diag.Bag
	Globals  *env.Globals
	Resolver *modules.Resolver
	File     string

	unresolvedSeq int
	frozen        map[int]types.Type
}

// New builds a Checker for one module. Pass the same Resolver to every
// Checker created for the lifetime of a single check run.
func New(file string, resolver *modules.Resolver) *Checker {
	return &Checker{
		Bag:      diag.NewBag(),
		Globals:  env.NewGlobals(env.NewGlobalScope()),
		Resolver: resolver,
		File:     file,
		frozen:   make(map[int]types.Type),
	}
}

// Check type-checks an entire program: applies its annotation stream's
// `open`/`assume`/`type alias` module-entry forms, then walks the top-level
// block, returning the module's return sequence.
func (c *Checker) Check(program *ast.Program, annots annot.Stream) types.Seq {
	c.applyModuleEntry(annots)
	scope := c.Globals.Scope()
	return unionSeqs(c.checkBlock(scope, annots, program.Stmts))
}

// CheckModule implements modules.Typechecker: it spawns a fresh Checker
// sharing this Checker's Resolver, recursively type-checking the referenced
// module.
func (c *Checker) CheckModule(file string, program *ast.Program, annots annot.Stream) modules.ModuleResult {
	sub := New(file, c.Resolver)
	ret := sub.Check(program, annots)
	return modules.ModuleResult{Return: ret, Bag: sub.Bag}
}

func (c *Checker) applyModuleEntry(annots annot.Stream) {
	scope := c.Globals.Scope()

	for _, o := range annots.OpenEnvs() {
		prelude, ok := config.LoadPrelude(o.Name)
		if !ok {
			c.Bag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAssume, o.Span, o.Name)
			continue
		}
		for name, src := range prelude.Assumes {
			t, err := annot.ParseType(o.Span, src, c.resolveAlias(scope))
			if err != nil {
				t = types.Dynamic{}
			}
			if gerr := c.Globals.Declare(o.Span, name, t, types.Var); gerr != nil {
				c.Bag.Add(gerr)
			}
		}
	}

	for _, a := range annots.TypeAliases() {
		if _, exists := scope.ResolveAlias(a.Name); exists {
			c.Bag.Errorf(diag.PhaseAnnot, diag.ErrAliasRedefined, a.Span, a.Name)
			continue
		}
		selfRef := false
		resolve := func(name string) (types.Type, bool) {
			if name == a.Name {
				selfRef = true
				return types.Dynamic{}, true
			}
			return scope.ResolveAlias(name)
		}
		t, err := annot.ParseType(a.Span, a.TypeSrc, resolve)
		if selfRef {
			c.Bag.Errorf(diag.PhaseAnnot, diag.ErrRecursiveAlias, a.Span, a.Name)
			t = types.Dynamic{}
		} else if err != nil {
			c.Bag.Add(err)
			t = types.Dynamic{}
		}
		scope.DeclareAlias(a.Name, t)
	}

	for _, a := range annots.Assumes() {
		t, err := annot.ParseType(a.Span, a.TypeSrc, c.resolveAlias(scope))
		if err != nil {
			c.Bag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAssume, a.Span, a.Name)
			t = types.Dynamic{}
		}
		if gerr := c.Globals.Declare(a.Span, a.Name, t, types.Var); gerr != nil {
			c.Bag.Add(gerr)
		}
	}
}

func (c *Checker) resolveAlias(scope *env.Scope) annot.AliasResolver {
	return func(name string) (types.Type, bool) {
		return scope.ResolveAlias(name)
	}
}

// nextUnresolvedParam allocates a fresh UnresolvedParameter placeholder.
func (c *Checker) nextUnresolvedParam() types.UnresolvedParameter {
	c.unresolvedSeq++
	return types.UnresolvedParameter{ID: c.unresolvedSeq}
}

// freeze records the type an UnresolvedParameter was unified with at its
// first call-site. Returns an error built from errSpan if the placeholder
// was already frozen to an incompatible type.
func (c *Checker) freeze(errSpan diag.Span, id int, with types.Type) (types.Type, *diag.Error) {
	if existing, ok := c.frozen[id]; ok {
		if types.IsEquivalent(existing, with) || types.IsSubtype(with, existing) {
			return existing, nil
		}
		return existing, diag.Errorf(diag.PhaseExpr, diag.ErrFrozenParam, errSpan, existing.String())
	}
	c.frozen[id] = with
	return with, nil
}
