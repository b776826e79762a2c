package diag

// Phase names the checker component that raised a diagnostic. Kept distinct
// from Code so the same taxonomy entry can, in principle, be raised from more
// than one phase without losing the ability to group by subsystem.
type Phase string

const (
	PhaseLattice Phase = "lattice"
	PhaseSubtype Phase = "subtype"
	PhaseTable   Phase = "table"
	PhaseEnv     Phase = "env"
	PhaseExpr    Phase = "expr"
	PhaseStmt    Phase = "stmt"
	PhaseModule  Phase = "module"
	PhaseAnnot   Phase = "annot"
)

// Severity ranks a diagnostic; only Error affects the ok/error verdict.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable diagnostic identifier, grouped by error taxonomy.
type Code string

const (
	// 1. Name resolution
	ErrUndefinedName    Code = "E001"
	ErrGlobalRedeclared Code = "E002"

	// 2. Subtype failure
	ErrNotSubtype Code = "E010"

	// 3. Operator misuse
	ErrBadOperand    Code = "E020"
	ErrMixedOrdering Code = "E021"
	ErrBadLength     Code = "E022"

	// 4. Table misuse
	ErrCannotIndex       Code = "E030"
	ErrCannotAdapt       Code = "E031"
	ErrCannotDowncast    Code = "E032"
	ErrAmbiguousKey      Code = "E033"
	ErrConstAssign       Code = "E034"

	// 5. Call misuse
	ErrNotCallable Code = "E040"
	ErrBadArity    Code = "E041"

	// 6. Annotation
	ErrUnknownAlias    Code = "E050"
	ErrRecursiveAlias  Code = "E051"
	ErrAliasRedefined  Code = "E052"
	ErrUnknownAssume   Code = "E053"

	// 7. Control-flow scope
	ErrVarargsOutsideFunction Code = "E060"
	ErrOutOfScope             Code = "E061"

	// 8. Module
	ErrRecursiveImport      Code = "E070"
	ErrUnresolvedImport     Code = "E071"
	ErrUnresolvedReturn     Code = "E072"
	ErrFalseReturningMod    Code = "E073"
	WarnCannotResolveImport Code = "W070"

	// Inference
	ErrFrozenParam Code = "E080"

	// type-of literal narrowing
	ErrBadTypeOfLiteral Code = "E090"
)

var messages = map[Code]string{
	ErrUndefinedName:    "undefined name %q",
	ErrGlobalRedeclared: "global %q already has a declared type %s",

	ErrNotSubtype: "%s is not a subtype of %s",

	ErrBadOperand:    "invalid operand of type %s for operator %q",
	ErrMixedOrdering: "cannot order %s and %s: either numbers or strings but not both",
	ErrBadLength:     "cannot take the length of %s",

	ErrCannotIndex:    "cannot index %s",
	ErrCannotAdapt:    "cannot adapt shape of %s to admit key %s: shape is fixed",
	ErrCannotDowncast: "cannot use %s as %s without an explicit downcast",
	ErrAmbiguousKey:   "key of type %s cannot be resolved statically against %s",
	ErrConstAssign:    "cannot assign to const slot %q",

	ErrNotCallable: "%s is not callable",
	ErrBadArity:    "wrong number of arguments: expected %d, got %d",

	ErrUnknownAlias:   "unknown type alias %q",
	ErrRecursiveAlias: "type alias %q is recursive",
	ErrAliasRedefined: "type alias %q redefined",
	ErrUnknownAssume:  "assume %q has an unrecognised type and is treated as dynamic",

	ErrVarargsOutsideFunction: "... referenced outside the innermost vararg function",
	ErrOutOfScope:             "%q is not in scope here",

	ErrRecursiveImport:      "recursive require was requested",
	ErrUnresolvedImport:     "module argument is not a literal string; cannot resolve",
	ErrUnresolvedReturn:     "module return type is not fully resolved",
	ErrFalseReturningMod:    "module must not return false",
	WarnCannotResolveImport: "cannot resolve non-literal require argument",

	ErrFrozenParam: "parameter type was frozen as %s by an earlier call",

	ErrBadTypeOfLiteral: "literal %q cannot appear as a return type name for type()",
}
