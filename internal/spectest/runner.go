package spectest

import (
	"fmt"
	"strings"

	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/checker"
	"github.com/funvibe/luatypes/internal/modules"
	"github.com/stretchr/testify/require"
)

// Frontend is the external collaborator the checker core deliberately
// leaves out: something that can parse one module's source text into an
// AST plus its annotation stream. A real implementation supplies a lexer
// and parser; this package only drives the checker once given one.
type Frontend interface {
	Parse(moduleName, source string) (*ast.Program, annot.Stream, error)
}

type caseLoader struct {
	frontend Frontend
	modules  map[string]ModuleSource
}

func (l *caseLoader) Load(name string) (string, *ast.Program, annot.Stream, bool) {
	mod, ok := l.modules[name]
	if !ok {
		return "", nil, nil, false
	}
	prog, annots, err := l.frontend.Parse(name, mod.Source)
	if err != nil {
		return "", nil, nil, false
	}
	return name, prog, annots, true
}

// Run drives one Case through the checker core and asserts its verdict and
// every embedded expectation. Disabled cases are skipped.
func Run(t require.TestingT, frontend Frontend, tc *Case) {
	if tc.Disabled {
		return
	}
	require.NotEmpty(t, tc.Modules, "case %s: no modules", tc.Name)

	byName := make(map[string]ModuleSource, len(tc.Modules))
	for _, m := range tc.Modules {
		byName[m.Name] = m
	}
	entry := tc.Modules[0]

	loader := &caseLoader{frontend: frontend, modules: byName}
	resolver := modules.NewResolver(loader, nil)
	chk := checker.New(entry.Name, resolver)
	resolver.Checker = chk

	prog, annots, err := frontend.Parse(entry.Name, entry.Source)
	require.NoError(t, err, "case %s: entry module failed to parse", tc.Name)

	chk.Check(prog, annots)

	require.Equal(t, tc.Verdict, chk.Bag.Verdict(), "case %s: verdict mismatch", tc.Name)

	diags := chk.Bag.All()
	matched := make([]bool, len(diags))
	for _, exp := range tc.Expectations {
		found := false
		for i, d := range diags {
			if matched[i] || d.Span.File != exp.Module || d.Span.Line != exp.Line {
				continue
			}
			if !strings.Contains(d.Error(), exp.Message) {
				continue
			}
			matched[i] = true
			found = true
			break
		}
		require.True(t, found, "case %s: no diagnostic matched %q at %s:%d", tc.Name, exp.Message, exp.Module, exp.Line)
	}
	for i, d := range diags {
		require.True(t, matched[i], "case %s: unmatched diagnostic %s", tc.Name, fmt.Sprint(d))
	}
}
