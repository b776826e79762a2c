package annot

import (
	"strconv"
	"strings"

	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/types"
)

// AliasResolver looks up a type alias by name.
type AliasResolver func(name string) (types.Type, bool)

// ParseType parses the small TYPE mini-language annotations are written in
// (the "--: TYPE" etc. payload) into a lattice Type. This is a bounded,
// single-purpose recursive-descent parser for a grammar fixed by this
// annotation format — not the general parser, which remains an external
// collaborator.
func ParseType(span diag.Span, src string, resolve AliasResolver) (types.Type, *diag.Error) {
	p := &typeParser{toks: lexType(src), span: span, resolve: resolve}
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, span, src)
	}
	return t, nil
}

// ParseSeq parses a return-position annotation (the "--> RET" payload),
// which may be a single TYPE or a "(T1, T2, ...Tn)" sequence.
func ParseSeq(span diag.Span, src string, resolve AliasResolver) (types.Seq, *diag.Error) {
	p := &typeParser{toks: lexType(src), span: span, resolve: resolve}
	seq, err := p.parseSeq()
	if err != nil {
		return types.Seq{}, err
	}
	if p.pos < len(p.toks) {
		return types.Seq{}, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, span, src)
	}
	return seq, nil
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokInt
	tokString
	tokPunct
	tokEOF
)

type tok struct {
	kind tokKind
	text string
}

func lexType(src string) []tok {
	var toks []tok
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '.' && i+2 < n && src[i+1] == '.' && src[i+2] == '.':
			toks = append(toks, tok{tokPunct, "..."})
			i += 3
		case c == '-' && i+1 < n && src[i+1] == '>':
			toks = append(toks, tok{tokPunct, "->"})
			i += 2
		case strings.ContainsRune("{}[]()|,:=", rune(c)):
			toks = append(toks, tok{tokPunct, string(c)})
			i++
		case c == '"':
			j := i + 1
			for j < n && src[j] != '"' {
				j++
			}
			toks = append(toks, tok{tokString, src[i+1 : j]})
			i = j + 1
		case c >= '0' && c <= '9':
			j := i
			for j < n && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			toks = append(toks, tok{tokInt, src[i:j]})
			i = j
		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, tok{tokIdent, src[i:j]})
			i = j
		default:
			i++ // skip unrecognised character rather than abort the whole annotation
		}
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}

type typeParser struct {
	toks    []tok
	pos     int
	span    diag.Span
	resolve AliasResolver
}

func (p *typeParser) peek() tok {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return tok{kind: tokEOF}
}

func (p *typeParser) next() tok {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *typeParser) expectPunct(s string) bool {
	if p.peek().kind == tokPunct && p.peek().text == s {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) parseUnion() (types.Type, *diag.Error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	members := []types.Type{first}
	for p.expectPunct("|") {
		m, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return types.NormalizeUnion(members), nil
}

func (p *typeParser) parsePrimary() (types.Type, *diag.Error) {
	t := p.peek()
	switch t.kind {
	case tokPunct:
		switch t.text {
		case "{":
			return p.parseTable(types.Currently)
		case "(":
			return p.parseFunc()
		}
	case tokInt:
		p.pos++
		v, _ := strconv.ParseInt(t.text, 10, 64)
		return types.IntLit{Value: v}, nil
	case tokString:
		p.pos++
		return types.StrLit{Value: t.text}, nil
	case tokIdent:
		p.pos++
		switch t.text {
		case "var", "const", "currently":
			variance := types.Currently
			switch t.text {
			case "var":
				variance = types.Var
			case "const":
				variance = types.Const
			}
			return p.parseTable(variance)
		case config.DynamicTypeName, "dynamic":
			return types.Dynamic{}, nil
		case "nil":
			return types.Nil{}, nil
		case "boolean":
			return types.Bool{}, nil
		case "true":
			return types.BoolLit{Value: true}, nil
		case "false":
			return types.BoolLit{Value: false}, nil
		case "number":
			return types.Number{}, nil
		case "integer":
			return types.Integer{}, nil
		case "string":
			return types.String{}, nil
		case config.TypeOfTable:
			return types.TableAny{}, nil
		case config.TypeOfFunction:
			return types.FuncAny{}, nil
		default:
			if p.resolve != nil {
				if resolved, ok := p.resolve(t.text); ok {
					return resolved, nil
				}
			}
			return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, t.text)
		}
	}
	return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, t.text)
}

func (p *typeParser) parseTable(variance types.Variance) (types.Type, *diag.Error) {
	p.next() // consume '{'
	if p.expectPunct("}") {
		return types.Table{Shape: types.NewEmptyShape()}, nil
	}
	if p.expectPunct("[") {
		key, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if !p.expectPunct("]") || !p.expectPunct("=") {
			return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "malformed map type")
		}
		val, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if !p.expectPunct("}") {
			return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "malformed map type")
		}
		return types.Table{Shape: types.NewMapShape(key, val, variance)}, nil
	}

	// Either a record/tuple ("name: T, ..." or "1: T, ...") or a bare array
	// element type ("{V}").
	start := p.pos
	if (p.peek().kind == tokIdent || p.peek().kind == tokInt) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tokPunct && p.toks[p.pos+1].text == ":" {
		fields := map[string]*types.Slot{}
		tuple := map[int64]*types.Slot{}
		isTuple := false
		for {
			keyTok := p.next()
			p.next() // ':'
			val, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			if keyTok.kind == tokInt {
				isTuple = true
				n, _ := strconv.ParseInt(keyTok.text, 10, 64)
				tuple[n] = types.NewSlot(val, variance)
			} else {
				fields[keyTok.text] = types.NewSlot(val, variance)
			}
			if !p.expectPunct(",") {
				break
			}
		}
		if !p.expectPunct("}") {
			return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "malformed table type")
		}
		if isTuple {
			return types.Table{Shape: &types.Shape{Kind: types.TupleShape, Tuple: tuple}}, nil
		}
		return types.Table{Shape: &types.Shape{Kind: types.RecordShape, Fields: fields}}, nil
	}
	p.pos = start

	val, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if !p.expectPunct("}") {
		return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "malformed array type")
	}
	return types.Table{Shape: types.NewArrayShape(val, variance)}, nil
}

func (p *typeParser) parseFunc() (types.Type, *diag.Error) {
	p.next() // '('
	var params []types.Type
	var variadic types.Type
	if !p.expectPunct(")") {
		for {
			if p.expectPunct("...") {
				v, err := p.parseUnion()
				if err != nil {
					return nil, err
				}
				variadic = v
				break
			}
			t, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			params = append(params, t)
			if !p.expectPunct(",") {
				break
			}
		}
		if !p.expectPunct(")") {
			return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "malformed function type")
		}
	}
	if !p.expectPunct("->") {
		return nil, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "function type missing ->")
	}
	seq, err := p.parseSeq()
	if err != nil {
		return nil, err
	}
	return types.Func{Params: params, Variadic: variadic, Returns: seq}, nil
}

func (p *typeParser) parseSeq() (types.Seq, *diag.Error) {
	if p.expectPunct("(") {
		if p.expectPunct(")") {
			return types.Seq{}, nil
		}
		var fixed []types.Type
		var variadic types.Type
		for {
			if p.expectPunct("...") {
				v, err := p.parseUnion()
				if err != nil {
					return types.Seq{}, err
				}
				variadic = v
				break
			}
			t, err := p.parseUnion()
			if err != nil {
				return types.Seq{}, err
			}
			fixed = append(fixed, t)
			if !p.expectPunct(",") {
				break
			}
		}
		if !p.expectPunct(")") {
			return types.Seq{}, diag.Errorf(diag.PhaseAnnot, diag.ErrUnknownAlias, p.span, "malformed return sequence")
		}
		return types.Seq{Fixed: fixed, Variadic: variadic}, nil
	}
	if p.expectPunct("...") {
		v, err := p.parseUnion()
		if err != nil {
			return types.Seq{}, err
		}
		return types.Seq{Variadic: v}, nil
	}
	t, err := p.parseUnion()
	if err != nil {
		return types.Seq{}, err
	}
	return types.SingleSeq(t), nil
}
