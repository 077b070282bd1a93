package resolver

import "errors"

var (
	// ErrUnresolved indicates the target library itself could not be found
	// by any provider in the chain.
	ErrUnresolved = errors.New("resolver: target library not found by any provider")

	// ErrNoChain indicates Resolve was called with an empty provider chain.
	ErrNoChain = errors.New("resolver: provider chain is empty")
)

// ResolverInputError wraps a malformed or inconsistent Input: an unknown
// required id, an unparsable range, or an invalid dependency-behavior flag
// (spec.md §6.5, §7 "Input" error class).
type ResolverInputError struct {
	Err error
}

func (e *ResolverInputError) Error() string { return "resolver: invalid input: " + e.Err.Error() }
func (e *ResolverInputError) Unwrap() error { return e.Err }

// ResolverConstraintError wraps the §4.G diagnostic for a failed resolution:
// no combination of versions satisfies every constraint, a conflict the
// graph fixpoint could not settle, or a circular dependency.
type ResolverConstraintError struct {
	Diagnostic string
	Err        error
}

func (e *ResolverConstraintError) Error() string { return "resolver: " + e.Diagnostic }
func (e *ResolverConstraintError) Unwrap() error { return e.Err }

// ResolutionCancelled wraps ctx.Err() when the caller's context is done
// before Resolve finishes walking or resolving conflicts (spec.md §6.5).
type ResolutionCancelled struct {
	Err error
}

func (e *ResolutionCancelled) Error() string {
	return "resolver: resolution cancelled: " + e.Err.Error()
}
func (e *ResolutionCancelled) Unwrap() error { return e.Err }

// ResolutionDidNotConverge wraps conflict.ErrResolutionDidNotConverge when
// the graph conflict resolver's fixpoint exhausts its iteration patience
// without settling (spec.md §4.E.2, §6.5).
type ResolutionDidNotConverge struct {
	Err error
}

func (e *ResolutionDidNotConverge) Error() string { return "resolver: " + e.Err.Error() }
func (e *ResolutionDidNotConverge) Unwrap() error { return e.Err }
