// This file implements the Statement Checker: walking blocks, applying
// narrowing effects across if/elseif/else chains, typing loops and function
// declarations, and collecting return sequences.
package checker

import (
	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/env"
	"github.com/funvibe/luatypes/internal/types"
)

func toVariance(v ast.Variance) types.Variance {
	switch v {
	case ast.VarianceConst:
		return types.Const
	case ast.VarianceVar:
		return types.Var
	default:
		return types.Currently
	}
}

// checkBlock walks stmts in scope and collects every Return sequence
// reachable from this block. Only actual Return statements contribute: a
// branch that falls through adds nothing, so a function's inferred return
// type is the union of its explicit return paths.
func (c *Checker) checkBlock(scope *env.Scope, annots annot.Stream, stmts []ast.Statement) []types.Seq {
	var collected []types.Seq
	for _, st := range stmts {
		collected = append(collected, c.checkStmt(scope, annots, st)...)
	}
	return collected
}

func unionSeqs(seqs []types.Seq) types.Seq {
	if len(seqs) == 0 {
		return types.Seq{}
	}
	maxFixed := 0
	anyVariadic := false
	for _, s := range seqs {
		if len(s.Fixed) > maxFixed {
			maxFixed = len(s.Fixed)
		}
		if s.Variadic != nil {
			anyVariadic = true
		}
	}
	fixed := make([]types.Type, maxFixed)
	for i := 0; i < maxFixed; i++ {
		members := make([]types.Type, 0, len(seqs))
		for _, s := range seqs {
			members = append(members, s.At(i))
		}
		fixed[i] = types.NormalizeUnion(members)
	}
	var variadic types.Type
	if anyVariadic {
		members := make([]types.Type, 0, len(seqs))
		for _, s := range seqs {
			if s.Variadic != nil {
				members = append(members, s.Variadic)
			}
		}
		variadic = types.NormalizeUnion(members)
	}
	return types.Seq{Fixed: fixed, Variadic: variadic}
}

// checkStmt types one statement, returning every Return sequence reachable
// through it (zero, one, or several across branches).
func (c *Checker) checkStmt(scope *env.Scope, annots annot.Stream, stmt ast.Statement) []types.Seq {
	switch n := stmt.(type) {
	case *ast.LocalDecl:
		c.checkLocalDecl(scope, annots, n)
	case *ast.Assign:
		c.checkAssign(scope, annots, n)
	case *ast.ExprStmt:
		c.checkExprSeq(scope, annots, n.Call)
		c.applyAssertNarrowing(scope, annots, n.Call)
	case *ast.If:
		return c.checkIf(scope, annots, n)
	case *ast.While:
		return c.checkWhile(scope, annots, n)
	case *ast.NumericFor:
		return c.checkNumericFor(scope, annots, n)
	case *ast.GenericFor:
		return c.checkGenericFor(scope, annots, n)
	case *ast.FuncDecl:
		c.checkFuncDecl(scope, annots, n)
	case *ast.Return:
		seq := c.checkExprListSeq(scope, annots, n.Values)
		return []types.Seq{seq}
	case *ast.Break:
		// Flow-control only; nothing to type.
	case *ast.Block:
		return c.checkBlock(scope.Push(), annots, n.Stmts)
	}
	return nil
}

// applyAssertNarrowing implements the one-armed assertion form: `assert(e)`
// narrows e's truthy effects for the remainder of the enclosing block, with
// no corresponding pop, since control only reaches past the call when e was
// truthy.
func (c *Checker) applyAssertNarrowing(scope *env.Scope, annots annot.Stream, call ast.Expression) {
	n, ok := call.(*ast.Call)
	if !ok || n.Method != "" || len(n.Args) == 0 {
		return
	}
	id, ok := n.Callee.(*ast.Ident)
	if !ok || id.Name != config.AssertPrimitiveName {
		return
	}
	truthy, _ := c.predicate(scope, annots, n.Args[0])
	for _, e := range truthy {
		scope.Narrow(e.Name, e.Type)
	}
}

func (c *Checker) declare(scope *env.Scope, span diag.Span, name string, t types.Type, variance types.Variance) {
	if scope == c.Globals.Scope() {
		if err := c.Globals.Declare(span, name, t, variance); err != nil {
			c.Bag.Add(err)
		}
		return
	}
	scope.Declare(name, t, variance)
}

func (c *Checker) checkLocalDecl(scope *env.Scope, annots annot.Stream, n *ast.LocalDecl) {
	if fn, ok := soleFuncLitValue(n); ok {
		c.checkLocalFuncDecl(scope, annots, n, fn)
		return
	}

	values := c.checkExprListSeq(scope, annots, n.Values)
	for i, name := range n.Names {
		valueType := values.At(i)
		variance := toVariance(n.Variance[i])
		declared := valueType
		if n.TypeSrcs[i] != "" {
			t, err := annot.ParseType(n.Span(), n.TypeSrcs[i], c.resolveAlias(scope))
			c.Bag.Add(err)
			if err == nil {
				if !types.IsSubtype(valueType, t) {
					c.Bag.Errorf(diag.PhaseStmt, diag.ErrNotSubtype, n.Span(), valueType.String(), t.String())
				}
				declared = t
			}
		}
		c.declare(scope, n.Span(), name, declared, variance)
	}
}

// soleFuncLitValue reports whether n is the single-name, single-value shape
// `local f = function(...) ... end`, the pattern that must support a
// self-recursive call to f from within its own body.
func soleFuncLitValue(n *ast.LocalDecl) (*ast.FuncLit, bool) {
	if len(n.Names) != 1 || len(n.Values) != 1 {
		return nil, false
	}
	fn, ok := n.Values[0].(*ast.FuncLit)
	return fn, ok
}

// checkLocalFuncDecl handles `local f = function(...) ... end`: f is
// pre-declared with a provisional signature before the body is walked, so a
// recursive call to f from inside its own body resolves instead of hitting
// an undefined-name error. Once the body has been checked, the binding is
// replaced with the function's real, final type.
func (c *Checker) checkLocalFuncDecl(scope *env.Scope, annots annot.Stream, n *ast.LocalDecl, fn *ast.FuncLit) {
	name := n.Names[0]
	variance := toVariance(n.Variance[0])

	placeholder := c.provisionalFuncType(scope, fn.Span(), fn.Params, fn.Varargs, fn.ReturnSrc, "")
	scope.Declare(name, placeholder, types.Currently)

	fnType := c.checkFuncLit(scope, annots, fn)

	declared := fnType
	if n.TypeSrcs[0] != "" {
		t, err := annot.ParseType(n.Span(), n.TypeSrcs[0], c.resolveAlias(scope))
		c.Bag.Add(err)
		if err == nil {
			if !types.IsSubtype(fnType, t) {
				c.Bag.Errorf(diag.PhaseStmt, diag.ErrNotSubtype, n.Span(), fnType.String(), t.String())
			}
			declared = t
		}
	}
	c.declare(scope, n.Span(), name, declared, variance)
}

// provisionalFuncType builds a best-effort Func signature for a function
// whose name must be visible to its own body before the body has been
// checked (a self-recursive call-site). A full `--v SIG` is trusted as
// written; otherwise annotated parameters/return keep their declared type
// and everything unannotated falls back to Dynamic, which is discarded once
// the real signature is known.
func (c *Checker) provisionalFuncType(scope *env.Scope, span diag.Span, params []ast.Param, varargs bool, returnSrc, sigSrc string) types.Type {
	if sigSrc != "" {
		if sig, err := annot.ParseType(span, sigSrc, c.resolveAlias(scope)); err == nil {
			if fn, ok := sig.(types.Func); ok {
				return fn
			}
		}
	}

	paramTypes := make([]types.Type, len(params))
	for i, p := range params {
		paramTypes[i] = types.Dynamic{}
		if p.TypeSrc != "" {
			if t, err := annot.ParseType(span, p.TypeSrc, c.resolveAlias(scope)); err == nil {
				paramTypes[i] = t
			}
		}
	}

	var variadic types.Type
	if varargs {
		variadic = types.Dynamic{}
	}

	returns := types.Seq{Variadic: types.Dynamic{}}
	if returnSrc != "" {
		if seq, err := annot.ParseSeq(span, returnSrc, c.resolveAlias(scope)); err == nil {
			returns = seq
		}
	}

	return types.Func{Params: paramTypes, Variadic: variadic, Returns: returns}
}

func (c *Checker) checkAssign(scope *env.Scope, annots annot.Stream, n *ast.Assign) {
	values := c.checkExprListSeq(scope, annots, n.Values)
	for i, target := range n.Targets {
		valT := values.At(i)
		switch t := target.(type) {
		case *ast.Ident:
			if err := scope.Assign(t.Span(), t.Name, valT); err != nil {
				c.Bag.Add(err)
			}
		case *ast.Index:
			objT := c.checkExpr(scope, annots, t.Object)
			var keyT types.Type
			if t.IsDot {
				keyT = types.StrLit{Value: t.Key.(*ast.StringLit).Value}
			} else {
				keyT = c.checkExpr(scope, annots, t.Key)
			}
			if err := c.indexWrite(t.Span(), objT, keyT, valT); err != nil {
				c.Bag.Add(err)
			}
		}
	}
}

// checkIf types an if/elseif/else chain: each branch's body is walked in a
// scope narrowed by its own predicate's truthy effects plus the accumulated
// falsy effects of every condition that must have failed to reach it.
func (c *Checker) checkIf(scope *env.Scope, annots annot.Stream, n *ast.If) []types.Seq {
	var rets []types.Seq

	c.checkExpr(scope, annots, n.Cond)
	truthy, falsy := c.predicate(scope, annots, n.Cond)

	thenScope := scope.Push()
	undo := ApplyEffects(thenScope, truthy)
	rets = append(rets, c.checkBlock(thenScope, annots, n.Then)...)
	undo()

	accumFalsy := falsy
	for _, ei := range n.ElseIfs {
		guardScope := scope.Push()
		undoGuard := ApplyEffects(guardScope, accumFalsy)
		c.checkExpr(guardScope, annots, ei.Cond)
		eiTruthy, eiFalsy := c.predicate(guardScope, annots, ei.Cond)

		eiScope := scope.Push()
		undoThen := ApplyEffects(eiScope, mergeSequential(accumFalsy, eiTruthy))
		rets = append(rets, c.checkBlock(eiScope, annots, ei.Body)...)
		undoThen()

		undoGuard()
		accumFalsy = mergeSequential(accumFalsy, eiFalsy)
	}

	if n.Else != nil {
		elseScope := scope.Push()
		undoElse := ApplyEffects(elseScope, accumFalsy)
		rets = append(rets, c.checkBlock(elseScope, annots, n.Else)...)
		undoElse()
	}

	return rets
}

func (c *Checker) checkWhile(scope *env.Scope, annots annot.Stream, n *ast.While) []types.Seq {
	c.checkExpr(scope, annots, n.Cond)
	truthy, _ := c.predicate(scope, annots, n.Cond)

	bodyScope := scope.Push()
	undo := ApplyEffects(bodyScope, truthy)
	ret := c.checkBlock(bodyScope, annots, n.Body)
	undo()
	return ret
}

func (c *Checker) checkNumericFor(scope *env.Scope, annots annot.Stream, n *ast.NumericFor) []types.Seq {
	allInteger := true
	for _, e := range []ast.Expression{n.Start, n.Stop, n.Step} {
		if e == nil {
			continue
		}
		t := c.checkExpr(scope, annots, e)
		if !types.IsSubtype(t, types.Number{}) {
			c.Bag.Errorf(diag.PhaseStmt, diag.ErrBadOperand, e.Span(), t.String(), "for")
		}
		if !types.IsSubtype(t, types.Integer{}) {
			allInteger = false
		}
	}

	loopVarType := types.Type(types.Number{})
	if allInteger {
		loopVarType = types.Integer{}
	}

	bodyScope := scope.Push()
	bodyScope.Declare(n.Var, loopVarType, types.Currently)
	return c.checkBlock(bodyScope, annots, n.Body)
}

// checkGenericFor types `for vars in exprs do ... end`: the iterator
// position's Func return sequence gives each loop variable's type.
func (c *Checker) checkGenericFor(scope *env.Scope, annots annot.Stream, n *ast.GenericFor) []types.Seq {
	iter := c.checkExprListSeq(scope, annots, n.Exprs)
	iterFunc := iter.At(0)

	bodyScope := scope.Push()
	switch fn := iterFunc.(type) {
	case types.Func:
		for i, name := range n.Vars {
			bodyScope.Declare(name, fn.Returns.At(i), types.Currently)
		}
	case types.Dynamic, types.FuncAny:
		for _, name := range n.Vars {
			bodyScope.Declare(name, types.Dynamic{}, types.Currently)
		}
	default:
		c.Bag.Errorf(diag.PhaseStmt, diag.ErrNotCallable, n.Exprs[0].Span(), iterFunc.String())
		for _, name := range n.Vars {
			bodyScope.Declare(name, types.Dynamic{}, types.Currently)
		}
	}

	return c.checkBlock(bodyScope, annots, n.Body)
}

// checkFuncDecl handles `function f(...) ... end` (and its method-sugar
// form). f's name is pre-declared with a provisional signature before the
// body is walked, so a self-recursive call to f from inside its own body
// resolves instead of hitting an undefined-name error; the binding is then
// replaced with the function's real, final type once the body has been
// checked.
func (c *Checker) checkFuncDecl(scope *env.Scope, annots annot.Stream, n *ast.FuncDecl) {
	params := n.Params
	if n.IsMethod {
		params = append([]ast.Param{{Name: n.Receiver}}, n.Params...)
	}

	placeholder := c.provisionalFuncType(scope, n.Span(), params, n.Varargs, n.ReturnSrc, n.SigSrc)
	scope.Declare(n.Name, placeholder, types.Currently)

	fnType := c.buildFunctionType(scope, annots, funcShape{
		Span:      n.Span(),
		Params:    params,
		Varargs:   n.Varargs,
		Body:      n.Body,
		ReturnSrc: n.ReturnSrc,
		SigSrc:    n.SigSrc,
	})
	c.declare(scope, n.Span(), n.Name, fnType, types.Var)
}
