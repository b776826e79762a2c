package modules

import (
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/types"
	"github.com/google/uuid"
)

// ModuleResult is what recursively checking a module produces: its
// top-level return sequence (Nil if the module never returns) plus the
// diagnostics collected while checking it.
type ModuleResult struct {
	Return types.Seq
	Bag    *diag.Bag
}

// ModuleState is one of the two states a module entry can be in while
// resolution is underway.
type ModuleState int

const (
	StateInProgress ModuleState = iota
	StateDone
)

// ModuleEntry tracks one module's resolution state and, once Done, its
// cached return type. TraceID exists only to make diamond-vs-cycle import
// stacks distinguishable in verbose logging — it is never consulted by the
// cache lookup or by any diagnostic, so it cannot affect module
// idempotence.
type ModuleEntry struct {
	State     ModuleState
	Return    types.Type
	FirstSite diag.Span
	TraceID   uuid.UUID
}
