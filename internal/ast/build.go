package ast

import "github.com/funvibe/luatypes/internal/diag"

// Constructors for every node form. The span field is deliberately
// unexported (nodes are immutable once built), so a real parser and the
// test fixtures both go through these.

func NewNilLit(span diag.Span) *NilLit     { return &NilLit{base: base{span: span}} }
func NewTrueLit(span diag.Span) *TrueLit   { return &TrueLit{base: base{span: span}} }
func NewFalseLit(span diag.Span) *FalseLit { return &FalseLit{base: base{span: span}} }
func NewVararg(span diag.Span) *Vararg     { return &Vararg{base: base{span: span}} }

func NewIntLit(span diag.Span, v int64) *IntLit {
	return &IntLit{base: base{span: span}, Value: v}
}

func NewNumberLit(span diag.Span, v float64) *NumberLit {
	return &NumberLit{base: base{span: span}, Value: v}
}

func NewStringLit(span diag.Span, v string) *StringLit {
	return &StringLit{base: base{span: span}, Value: v}
}

func NewIdent(span diag.Span, name string) *Ident {
	return &Ident{base: base{span: span}, Name: name}
}

func NewUnary(span diag.Span, op string, operand Expression) *Unary {
	return &Unary{base: base{span: span}, Op: op, Operand: operand}
}

func NewBinary(span diag.Span, op string, left, right Expression) *Binary {
	return &Binary{base: base{span: span}, Op: op, Left: left, Right: right}
}

// NewIndex builds t[k]; NewDotIndex builds t.k with the key as a string
// literal at the same span.
func NewIndex(span diag.Span, object, key Expression) *Index {
	return &Index{base: base{span: span}, Object: object, Key: key}
}

func NewDotIndex(span diag.Span, object Expression, key string) *Index {
	return &Index{base: base{span: span}, Object: object, Key: NewStringLit(span, key), IsDot: true}
}

func NewCall(span diag.Span, callee Expression, args ...Expression) *Call {
	return &Call{base: base{span: span}, Callee: callee, Args: args}
}

func NewMethodCall(span diag.Span, recv Expression, method string, args ...Expression) *Call {
	return &Call{base: base{span: span}, Callee: recv, Method: method, Args: args}
}

func NewFuncLit(span diag.Span, params []Param, body []Statement) *FuncLit {
	return &FuncLit{base: base{span: span}, Params: params, Body: body}
}

func NewTableCons(span diag.Span, fields ...TableField) *TableCons {
	return &TableCons{base: base{span: span}, Fields: fields}
}

// NewLocalDecl declares names with no annotations; callers needing
// per-name type sources or variance fill TypeSrcs/Variance on the result.
func NewLocalDecl(span diag.Span, names []string, values ...Expression) *LocalDecl {
	return &LocalDecl{
		base:     base{span: span},
		Names:    names,
		TypeSrcs: make([]string, len(names)),
		Variance: make([]Variance, len(names)),
		Values:   values,
	}
}

func NewAssign(span diag.Span, targets []Expression, values ...Expression) *Assign {
	return &Assign{base: base{span: span}, Targets: targets, Values: values}
}

func NewExprStmt(span diag.Span, call Expression) *ExprStmt {
	return &ExprStmt{base: base{span: span}, Call: call}
}

func NewIf(span diag.Span, cond Expression, then []Statement) *If {
	return &If{base: base{span: span}, Cond: cond, Then: then}
}

func NewWhile(span diag.Span, cond Expression, body []Statement) *While {
	return &While{base: base{span: span}, Cond: cond, Body: body}
}

func NewNumericFor(span diag.Span, v string, start, stop, step Expression, body []Statement) *NumericFor {
	return &NumericFor{base: base{span: span}, Var: v, Start: start, Stop: stop, Step: step, Body: body}
}

func NewGenericFor(span diag.Span, vars []string, exprs []Expression, body []Statement) *GenericFor {
	return &GenericFor{base: base{span: span}, Vars: vars, Exprs: exprs, Body: body}
}

func NewFuncDecl(span diag.Span, name string, params []Param, body []Statement) *FuncDecl {
	return &FuncDecl{base: base{span: span}, Name: name, Params: params, Body: body}
}

func NewReturn(span diag.Span, values ...Expression) *Return {
	return &Return{base: base{span: span}, Values: values}
}

func NewBreak(span diag.Span) *Break { return &Break{base: base{span: span}} }

func NewBlock(span diag.Span, stmts ...Statement) *Block {
	return &Block{base: base{span: span}, Stmts: stmts}
}
