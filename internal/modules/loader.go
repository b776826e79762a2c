// Package modules implements the Module Resolver: for each literal-argument
// call to the import primitive, locate and recursively type-check the
// referenced module, cache its returned type, and detect recursion and
// disconnected modules. Resolution state is tracked per module as one of
// two states (in-progress / done) rather than a pair of booleans.
package modules

import (
	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
)

// FileLoader is the external file-loader: load(module_name) -> AST |
// NotFound. A real implementation parses the module and extracts its
// annotation stream; this package only consumes the result.
type FileLoader interface {
	Load(moduleName string) (file string, program *ast.Program, annots annot.Stream, ok bool)
}

// Typechecker is the callback the Resolver uses to recursively check a
// referenced module: the Resolver obtains the parse from its FileLoader
// and hands it to CheckModule, which type-checks it. Defined here, rather
// than importing the
// checker package directly, so internal/checker can import internal/modules
// without creating an import cycle — internal/checker implements this
// interface on its own Checker type.
type Typechecker interface {
	CheckModule(file string, program *ast.Program, annots annot.Stream) ModuleResult
}
