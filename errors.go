package ioc

import "github.com/corewell/ioc/internal/core"

// Sentinel errors, re-exported from the core error taxonomy.
var (
	ErrScopeDisposed = core.ErrScopeDisposed
	ErrRegistryBuilt = core.ErrRegistryBuilt
	ErrPipelineBuilt = core.ErrPipelineBuilt
)

// Typed errors the resolve pipeline can return. Every failure resolve can
// produce belongs to this closed set (plus whatever an activator itself
// returns, wrapped by DependencyResolutionError).
type (
	ComponentNotRegisteredError   = core.ComponentNotRegisteredError
	DependencyResolutionError     = core.DependencyResolutionError
	CircularDependencyError       = core.CircularDependencyError
	NoMatchingScopeError          = core.NoMatchingScopeError
	InvalidRegistrationStateError = core.InvalidRegistrationStateError
	PipelinePhaseViolationError   = core.PipelinePhaseViolationError
	ObjectDisposedError           = core.ObjectDisposedError
)

// IsComponentNotRegistered reports whether err is (or wraps) a
// ComponentNotRegisteredError, the one kind TryResolve swallows.
func IsComponentNotRegistered(err error) bool { return core.IsComponentNotRegistered(err) }

// IsCircularDependency reports whether err is (or wraps) a
// CircularDependencyError.
func IsCircularDependency(err error) bool { return core.IsCircularDependency(err) }
