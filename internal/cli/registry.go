// Package cli implements the luatypes command-line driver: subcommand
// dispatch, diagnostic reporting (plain or `--json`), verbose resolver
// tracing, and the `--open` prelude flag, using a `handleX() bool`-style
// dispatch idiom.
package cli

import "github.com/funvibe/luatypes/internal/spectest"

// Frontend is the parser/lexer seam this repository deliberately leaves
// external: something that turns one module's source text into an AST
// plus its annotation stream. Reusing spectest.Frontend keeps the harness
// and the CLI driven by the same external collaborator instead of two
// slightly different ones.
type Frontend = spectest.Frontend

var frontends = map[string]Frontend{}

// RegisterFrontend makes a Frontend available to the CLI under name,
// following the registry pattern of database/sql.Register and
// image.RegisterFormat: this package only ever consumes a Frontend, it
// never constructs one, so a build that wants `luatypes check`/`luatypes
// test` to actually run links in a package that calls this from an init
// function.
func RegisterFrontend(name string, f Frontend) {
	frontends[name] = f
}

// lookupFrontend returns the named frontend, or the sole registered one
// when name is empty and exactly one has been registered.
func lookupFrontend(name string) (Frontend, bool) {
	if name != "" {
		f, ok := frontends[name]
		return f, ok
	}
	if len(frontends) == 1 {
		for _, f := range frontends {
			return f, true
		}
	}
	return nil, false
}
