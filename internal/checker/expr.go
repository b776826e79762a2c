package checker

import (
	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/env"
	"github.com/funvibe/luatypes/internal/types"
)

// checkExpr types e in single-value context: a multi-valued expression
// (call, ...) is truncated to its first result.
func (c *Checker) checkExpr(scope *env.Scope, annots annot.Stream, e ast.Expression) types.Type {
	return c.checkExprSeq(scope, annots, e).First()
}

// checkExprSeq types e in its native arity: everything but a call or `...`
// is a single value; those two may carry more.
func (c *Checker) checkExprSeq(scope *env.Scope, annots annot.Stream, e ast.Expression) types.Seq {
	t := c.checkExprSeqInner(scope, annots, e)
	if src, ok := annots.ExprType(e); ok {
		if declared, err := annot.ParseType(e.Span(), src, c.resolveAlias(scope)); err == nil {
			if !types.IsSubtype(t.First(), declared) {
				c.Bag.Errorf(diag.PhaseExpr, diag.ErrNotSubtype, e.Span(), t.First().String(), declared.String())
			}
			return types.SingleSeq(declared)
		}
	}
	return t
}

func (c *Checker) checkExprSeqInner(scope *env.Scope, annots annot.Stream, e ast.Expression) types.Seq {
	switch n := e.(type) {
	case *ast.NilLit:
		return types.SingleSeq(types.Nil{})
	case *ast.TrueLit:
		return types.SingleSeq(types.BoolLit{Value: true})
	case *ast.FalseLit:
		return types.SingleSeq(types.BoolLit{Value: false})
	case *ast.IntLit:
		return types.SingleSeq(types.IntLit{Value: n.Value})
	case *ast.NumberLit:
		return types.SingleSeq(types.Number{})
	case *ast.StringLit:
		return types.SingleSeq(types.StrLit{Value: n.Value})
	case *ast.Vararg:
		vt, ok := scope.Varargs()
		if !ok {
			c.Bag.Errorf(diag.PhaseStmt, diag.ErrVarargsOutsideFunction, n.Span())
			return types.SingleSeq(types.Dynamic{})
		}
		return types.Seq{Variadic: vt}
	case *ast.Ident:
		t, err := scope.Read(n.Span(), n.Name)
		c.Bag.Add(err)
		return types.SingleSeq(t)
	case *ast.Unary:
		return types.SingleSeq(c.checkUnary(scope, annots, n))
	case *ast.Binary:
		return types.SingleSeq(c.checkBinary(scope, annots, n))
	case *ast.Index:
		objT := c.checkExpr(scope, annots, n.Object)
		var keyT types.Type
		if n.IsDot {
			keyT = types.StrLit{Value: n.Key.(*ast.StringLit).Value}
		} else {
			keyT = c.checkExpr(scope, annots, n.Key)
		}
		t, err := c.indexType(n.Span(), objT, keyT)
		c.Bag.Add(err)
		return types.SingleSeq(t)
	case *ast.Call:
		return c.checkCall(scope, annots, n)
	case *ast.FuncLit:
		return types.SingleSeq(c.checkFuncLit(scope, annots, n))
	case *ast.TableCons:
		return types.SingleSeq(c.checkTableCons(scope, annots, n))
	}
	return types.SingleSeq(types.Dynamic{})
}

// checkExprListSeq types a comma-separated expression list (call arguments,
// return values, table array fields): every element but the last
// contributes one value; the last, if a call or `...`, contributes its full
// sequence.
func (c *Checker) checkExprListSeq(scope *env.Scope, annots annot.Stream, exprs []ast.Expression) types.Seq {
	var fixed []types.Type
	var variadic types.Type
	for i, e := range exprs {
		if i == len(exprs)-1 {
			seq := c.checkExprSeq(scope, annots, e)
			fixed = append(fixed, seq.Fixed...)
			variadic = seq.Variadic
			continue
		}
		fixed = append(fixed, c.checkExpr(scope, annots, e))
	}
	return types.Seq{Fixed: fixed, Variadic: variadic}
}

func isDynamic(t types.Type) bool {
	_, ok := t.(types.Dynamic)
	return ok
}

func (c *Checker) checkUnary(scope *env.Scope, annots annot.Stream, n *ast.Unary) types.Type {
	operand := c.checkExpr(scope, annots, n.Operand)
	switch n.Op {
	case "-":
		if isDynamic(operand) {
			return types.Dynamic{}
		}
		if types.IsSubtype(operand, types.Number{}) {
			if types.IsSubtype(operand, types.Integer{}) {
				return types.Integer{}
			}
			return types.Number{}
		}
		c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadOperand, n.Span(), operand.String(), n.Op)
		return types.Dynamic{}
	case "not":
		return types.Bool{}
	case "#":
		if isDynamic(operand) {
			return types.Dynamic{}
		}
		if types.IsSubtype(operand, types.String{}) || types.IsSubtype(operand, types.TableAny{}) {
			return types.Integer{}
		}
		c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadLength, n.Span(), operand.String())
		return types.Integer{}
	}
	return types.Dynamic{}
}

func (c *Checker) checkBinary(scope *env.Scope, annots annot.Stream, n *ast.Binary) types.Type {
	switch n.Op {
	case "and":
		lt := c.checkExpr(scope, annots, n.Left)
		rt := c.checkExpr(scope, annots, n.Right)
		return types.NormalizeUnion([]types.Type{rt, types.FalsyPart(lt)})
	case "or":
		lt := c.checkExpr(scope, annots, n.Left)
		rt := c.checkExpr(scope, annots, n.Right)
		return types.NormalizeUnion([]types.Type{types.RemoveFalsy(lt), rt})
	}

	lt := c.checkExpr(scope, annots, n.Left)
	rt := c.checkExpr(scope, annots, n.Right)

	switch n.Op {
	case "+", "-", "*", "/", "%", "^":
		return c.checkArith(n, lt, rt)
	case "..":
		if isDynamic(lt) || isDynamic(rt) {
			return types.Dynamic{}
		}
		if concatOperand(lt) && concatOperand(rt) {
			return types.String{}
		}
		c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadOperand, n.Span(), lt.String(), n.Op)
		return types.String{}
	case "<", "<=", ">", ">=":
		ltNum, rtNum := types.IsSubtype(lt, types.Number{}), types.IsSubtype(rt, types.Number{})
		ltStr, rtStr := types.IsSubtype(lt, types.String{}), types.IsSubtype(rt, types.String{})
		if !((ltNum && rtNum) || (ltStr && rtStr)) {
			c.Bag.Errorf(diag.PhaseExpr, diag.ErrMixedOrdering, n.Span(), lt.String(), rt.String())
		}
		return types.Bool{}
	case "==", "~=":
		if _, lit, ok := typeOfEquality(n); ok {
			if _, known := baseKindFor(lit); !known {
				c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadTypeOfLiteral, n.Span(), lit)
			}
		}
		return types.Bool{}
	}
	return types.Dynamic{}
}

func concatOperand(t types.Type) bool {
	return types.IsSubtype(t, types.String{}) || types.IsSubtype(t, types.Number{})
}

func (c *Checker) checkArith(n *ast.Binary, lt, rt types.Type) types.Type {
	if isDynamic(lt) || isDynamic(rt) {
		return types.Dynamic{}
	}
	if !types.IsSubtype(lt, types.Number{}) {
		c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadOperand, n.Span(), lt.String(), n.Op)
	}
	if !types.IsSubtype(rt, types.Number{}) {
		c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadOperand, n.Span(), rt.String(), n.Op)
	}
	if n.Op == "/" {
		return types.Number{}
	}
	if types.IsSubtype(lt, types.Integer{}) && types.IsSubtype(rt, types.Integer{}) {
		return types.Integer{}
	}
	return types.Number{}
}

// indexType types a read t[k] against the object's shape.
func (c *Checker) indexType(span diag.Span, objType, keyType types.Type) (types.Type, *diag.Error) {
	switch o := objType.(type) {
	case types.Dynamic:
		return types.Dynamic{}, nil
	case types.TableAny:
		return types.Dynamic{}, diag.Errorf(diag.PhaseTable, diag.ErrCannotDowncast, span, o.String(), "table")
	case types.Table:
		return o.Shape.IndexRead(span, keyType)
	}
	return types.Dynamic{}, diag.Errorf(diag.PhaseExpr, diag.ErrCannotIndex, span, objType.String())
}

// indexWrite types an assignment t[k] = v.
func (c *Checker) indexWrite(span diag.Span, objType, keyType, valueType types.Type) *diag.Error {
	switch o := objType.(type) {
	case types.Dynamic:
		return nil
	case types.TableAny:
		return diag.Errorf(diag.PhaseTable, diag.ErrCannotDowncast, span, o.String(), "table")
	case types.Table:
		return o.Shape.IndexWrite(span, keyType, valueType)
	}
	return diag.Errorf(diag.PhaseExpr, diag.ErrCannotIndex, span, objType.String())
}

// checkCall types a call expression, desugaring a method call t:m(args)
// into t.m(t, args).
func (c *Checker) checkCall(scope *env.Scope, annots annot.Stream, n *ast.Call) types.Seq {
	if n.Method == "" && len(n.Args) == 1 {
		if id, ok := n.Callee.(*ast.Ident); ok && id.Name == config.RequirePrimitiveName {
			if lit, ok := n.Args[0].(*ast.StringLit); ok {
				return types.SingleSeq(c.Resolver.ResolveLiteral(c.Bag, n.Span(), lit.Value))
			}
			c.checkExpr(scope, annots, n.Args[0])
			return types.SingleSeq(c.Resolver.ResolveNonLiteral(c.Bag, n.Span()))
		}
	}

	var calleeType types.Type
	var args types.Seq

	if n.Method != "" {
		recvType := c.checkExpr(scope, annots, n.Callee)
		mt, err := c.indexType(n.Span(), recvType, types.StrLit{Value: n.Method})
		c.Bag.Add(err)
		calleeType = mt
		rest := c.checkExprListSeq(scope, annots, n.Args)
		args = types.Seq{Fixed: append([]types.Type{recvType}, rest.Fixed...), Variadic: rest.Variadic}
	} else {
		calleeType = c.checkExpr(scope, annots, n.Callee)
		args = c.checkExprListSeq(scope, annots, n.Args)
	}

	switch fn := calleeType.(type) {
	case types.Dynamic:
		return types.Seq{Variadic: types.Dynamic{}}
	case types.FuncAny:
		return types.Seq{Variadic: types.Dynamic{}}
	case types.Func:
		return c.checkCallAgainstFunc(n.Span(), fn, args)
	}
	c.Bag.Errorf(diag.PhaseExpr, diag.ErrNotCallable, n.Span(), calleeType.String())
	return types.Seq{Variadic: types.Dynamic{}}
}

func (c *Checker) checkCallAgainstFunc(span diag.Span, fn types.Func, args types.Seq) types.Seq {
	if fn.Variadic == nil && args.Variadic == nil && len(args.Fixed) > len(fn.Params) {
		c.Bag.Errorf(diag.PhaseExpr, diag.ErrBadArity, span, len(fn.Params), len(args.Fixed))
	}

	frozen := map[int]types.Type{}
	for i, param := range fn.Params {
		argT := args.At(i)
		if up, ok := param.(types.UnresolvedParameter); ok {
			resolved, err := c.freeze(span, up.ID, argT)
			c.Bag.Add(err)
			frozen[up.ID] = resolved
			continue
		}
		if !types.IsSubtype(argT, param) {
			c.Bag.Errorf(diag.PhaseSubtype, diag.ErrNotSubtype, span, argT.String(), param.String())
		}
	}
	if fn.Variadic != nil {
		for i := len(fn.Params); i < len(args.Fixed); i++ {
			if !types.IsSubtype(args.Fixed[i], fn.Variadic) {
				c.Bag.Errorf(diag.PhaseSubtype, diag.ErrNotSubtype, span, args.Fixed[i].String(), fn.Variadic.String())
			}
		}
	}

	ret := fn.Returns
	if len(frozen) == 0 {
		return ret
	}
	fixed := make([]types.Type, len(ret.Fixed))
	for i, r := range ret.Fixed {
		fixed[i] = types.Substitute(r, frozen)
	}
	var variadic types.Type
	if ret.Variadic != nil {
		variadic = types.Substitute(ret.Variadic, frozen)
	}
	return types.Seq{Fixed: fixed, Variadic: variadic}
}

// checkFuncLit types a function literal: annotated parameters parse to
// their declared type; unannotated ones start as a fresh
// UnresolvedParameter, frozen at its first call-site.
func (c *Checker) checkFuncLit(scope *env.Scope, annots annot.Stream, n *ast.FuncLit) types.Type {
	return c.buildFunctionType(scope, annots, funcShape{
		Span:       n.Span(),
		Params:     n.Params,
		Varargs:    n.Varargs,
		VarargType: n.VarargType,
		Body:       n.Body,
		ReturnSrc:  n.ReturnSrc,
	})
}

// funcShape is the common surface a function literal and a `function`
// statement both expose to buildFunctionType.
type funcShape struct {
	Span       diag.Span
	Params     []ast.Param
	Varargs    bool
	VarargType string
	Body       []ast.Statement
	ReturnSrc  string
	SigSrc     string // full `--v (T...) -> RET` signature, takes priority over per-param/return sources
}

// buildFunctionType types one function body and produces its Func type. A
// full `--v SIG` signature is trusted as written; otherwise each parameter
// is either its own `--: TYPE` annotation or a
// fresh UnresolvedParameter, and the return type is inferred from the
// body's Return statements unless a `--> RET` annotation overrides it.
func (c *Checker) buildFunctionType(scope *env.Scope, annots annot.Stream, fs funcShape) types.Type {
	if fs.SigSrc != "" {
		sig, err := annot.ParseType(fs.Span, fs.SigSrc, c.resolveAlias(scope))
		c.Bag.Add(err)
		if fn, ok := sig.(types.Func); ok && err == nil {
			fnScope := env.PushFunction(scope, c.varargType(scope, fs.VarargType, fs.Varargs), fs.Varargs)
			for i, p := range fs.Params {
				pt := types.Type(fn.Variadic)
				if i < len(fn.Params) {
					pt = fn.Params[i]
				} else if pt == nil {
					pt = types.Dynamic{}
				}
				fnScope.Declare(p.Name, pt, types.Currently)
			}
			if len(fs.Params) != len(fn.Params) && fn.Variadic == nil {
				c.Bag.Errorf(diag.PhaseAnnot, diag.ErrBadArity, fs.Span, len(fs.Params), len(fn.Params))
			}
			inferred := unionSeqs(c.checkBlock(fnScope, annots, fs.Body))
			c.checkReturnAgainst(fs.Span, inferred, fn.Returns)
			return fn
		}
	}

	fnScope := env.PushFunction(scope, c.varargType(scope, fs.VarargType, fs.Varargs), fs.Varargs)

	params := make([]types.Type, len(fs.Params))
	for i, p := range fs.Params {
		var pt types.Type
		if p.TypeSrc != "" {
			parsed, err := annot.ParseType(fs.Span, p.TypeSrc, c.resolveAlias(scope))
			c.Bag.Add(err)
			if err != nil {
				parsed = types.Dynamic{}
			}
			pt = parsed
		} else {
			pt = c.nextUnresolvedParam()
		}
		params[i] = pt
		fnScope.Declare(p.Name, pt, types.Currently)
	}

	var declaredReturn *types.Seq
	if fs.ReturnSrc != "" {
		seq, err := annot.ParseSeq(fs.Span, fs.ReturnSrc, c.resolveAlias(scope))
		c.Bag.Add(err)
		if err == nil {
			declaredReturn = &seq
		}
	}

	inferredReturn := unionSeqs(c.checkBlock(fnScope, annots, fs.Body))

	var variadic types.Type
	if fs.Varargs {
		variadic, _ = fnScope.Varargs()
	}

	if declaredReturn != nil {
		c.checkReturnAgainst(fs.Span, inferredReturn, *declaredReturn)
		return types.Func{Params: params, Variadic: variadic, Returns: *declaredReturn}
	}
	return types.Func{Params: params, Variadic: variadic, Returns: inferredReturn}
}

// checkReturnAgainst verifies a body's inferred return sequence against a
// declared one: each declared position is checked after padding the
// inferred sequence with Nil; extra inferred values are discarded, the
// ordinary sequence-to-arity adaptation.
func (c *Checker) checkReturnAgainst(span diag.Span, got, want types.Seq) {
	for i := range want.Fixed {
		if !types.IsSubtype(got.At(i), want.Fixed[i]) {
			c.Bag.Errorf(diag.PhaseStmt, diag.ErrNotSubtype, span, got.At(i).String(), want.Fixed[i].String())
		}
	}
	if got.Variadic != nil && want.Variadic != nil && !types.IsSubtype(got.Variadic, want.Variadic) {
		c.Bag.Errorf(diag.PhaseStmt, diag.ErrNotSubtype, span, got.Variadic.String(), want.Variadic.String())
	}
}

func (c *Checker) varargType(scope *env.Scope, src string, hasVarargs bool) types.Type {
	if !hasVarargs {
		return nil
	}
	if src == "" {
		return types.Dynamic{}
	}
	t, err := annot.ParseType(diag.Span{}, src, c.resolveAlias(scope))
	if err != nil {
		return types.Dynamic{}
	}
	return t
}

// checkTableCons types a table constructor: every field is folded through
// Shape.IndexWrite on a freshly allocated empty shape.
func (c *Checker) checkTableCons(scope *env.Scope, annots annot.Stream, n *ast.TableCons) types.Type {
	shape := types.NewEmptyShape()
	nextIndex := int64(1)
	for i, f := range n.Fields {
		if f.Key == nil {
			isLast := i == len(n.Fields)-1
			if isLast {
				seq := c.checkExprSeq(scope, annots, f.Value)
				for _, v := range seq.Fixed {
					if err := shape.IndexWrite(f.Value.Span(), types.IntLit{Value: nextIndex}, v); err != nil {
						c.Bag.Add(err)
					}
					nextIndex++
				}
				if seq.Variadic != nil {
					if err := shape.IndexWrite(f.Value.Span(), types.Integer{}, seq.Variadic); err != nil {
						c.Bag.Add(err)
					}
				}
				continue
			}
			v := c.checkExpr(scope, annots, f.Value)
			if err := shape.IndexWrite(f.Value.Span(), types.IntLit{Value: nextIndex}, v); err != nil {
				c.Bag.Add(err)
			}
			nextIndex++
			continue
		}
		keyT := c.checkExpr(scope, annots, f.Key)
		valT := c.checkExpr(scope, annots, f.Value)
		if err := shape.IndexWrite(f.Value.Span(), keyT, valT); err != nil {
			c.Bag.Add(err)
		}
	}
	return types.Table{Shape: shape}
}
