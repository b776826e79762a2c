// Package annot models the annotation stream that accompanies an AST: the
// structured comments (`assume`, `type ALIAS =`, `open ENV`, and the
// per-expression `--:`/`-->`/`--v`/`--@<` forms). Like parsing, a real
// annotation extractor is an external collaborator; this package fixes the
// shape the core consumes and supplies the small type mini-language parser
// those annotations' TYPE payloads are written in.
package annot

import (
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/diag"
)

// Assume is an `assume NAME: TYPE` annotation.
type Assume struct {
	Name    string
	TypeSrc string
	Span    diag.Span
}

// TypeAlias is a `type ALIAS = TYPE` annotation.
type TypeAlias struct {
	Name    string
	TypeSrc string
	Span    diag.Span
}

// OpenEnv is an `open ENV` annotation.
type OpenEnv struct {
	Name string
	Span diag.Span
}

// Stream is the annotation-stream contract the checker consults at
// module-entry time (global assume/alias/open forms) and at individual
// expression nodes (`--:`). Function annotations (`-->`, `--v`) are not
// part of it; they travel as source text on the AST nodes themselves.
type Stream interface {
	Assumes() []Assume
	TypeAliases() []TypeAlias
	OpenEnvs() []OpenEnv

	// ExprType returns the `--: TYPE` annotation attached to n, if any.
	ExprType(n ast.Node) (string, bool)
}

// MapStream is a plain in-memory Stream, the form both the test harness
// (internal/spectest) and hand-written unit tests build directly instead of
// going through a real comment extractor.
type MapStream struct {
	AssumeList []Assume
	AliasList  []TypeAlias
	OpenList   []OpenEnv
	ExprTypes  map[ast.Node]string
}

func NewMapStream() *MapStream {
	return &MapStream{ExprTypes: make(map[ast.Node]string)}
}

func (m *MapStream) Assumes() []Assume         { return m.AssumeList }
func (m *MapStream) TypeAliases() []TypeAlias  { return m.AliasList }
func (m *MapStream) OpenEnvs() []OpenEnv       { return m.OpenList }

func (m *MapStream) ExprType(n ast.Node) (string, bool) {
	s, ok := m.ExprTypes[n]
	return s, ok
}
