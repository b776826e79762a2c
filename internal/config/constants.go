package config

// DynamicTypeName is the spelling of the dynamic escape-hatch type in
// annotations.
const DynamicTypeName = "any"

// Names returned by the source language's type-of primitive, recognised by
// the narrowing logic.
const (
	TypeOfNumber   = "number"
	TypeOfString   = "string"
	TypeOfBoolean  = "boolean"
	TypeOfTable    = "table"
	TypeOfFunction = "function"
	TypeOfNil      = "nil"
)

// Names recognised as user-declared narrowing helpers.
const (
	NarrowAssertNot  = "assert-not"
	NarrowAssertType = "assert-type"
)

// RequirePrimitiveName is the import-like call recognised by the Module
// Resolver.
const RequirePrimitiveName = "require"

// AssertPrimitiveName is the one-armed-if assertion form.
const AssertPrimitiveName = "assert"

// SourceFileExtension is the extension the CLI's module loader appends to a
// module path that has no extension of its own.
const SourceFileExtension = ".lt"

// TestCaseFileExtension is the extension `luatypes test` looks for when
// walking a directory for test harness case files.
const TestCaseFileExtension = ".cases"
