package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple, information-free failure modes. Richer
// failures use the typed errors below, following the teacher's mix of
// sentinel values and typed structs with Unwrap.
var (
	// ErrScopeDisposed is returned by scope operations invoked after the
	// scope's disposal has begun.
	ErrScopeDisposed = errors.New("ioc: lifetime scope has been disposed")

	// ErrRegistryBuilt is returned by register/addRegistrationSource
	// calls against a registry whose owning scope has already been
	// built, outside of a sub-scope's own local registrations.
	ErrRegistryBuilt = errors.New("ioc: component registry has been built and can no longer be modified")

	// ErrPipelineBuilt is returned when middleware is inserted into a
	// pipeline after it has already been built.
	ErrPipelineBuilt = errors.New("ioc: pipeline has already been built")
)

// ComponentNotRegisteredError is raised when resolve finds no
// implementation, fixed registration, default, or applicable source for a
// requested service.
type ComponentNotRegisteredError struct {
	Service Service
}

func (e *ComponentNotRegisteredError) Error() string {
	return fmt.Sprintf("ioc: no component registered for service %s", e.Service)
}

// DependencyResolutionError wraps a failure raised by an activator,
// parameter, middleware, or decorator, carrying the chain of services that
// were being resolved when it occurred.
type DependencyResolutionError struct {
	Chain []Service
	Cause error
}

func (e *DependencyResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("ioc: error resolving ")
	for i, s := range e.Chain {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(s.String())
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *DependencyResolutionError) Unwrap() error { return e.Cause }

// CircularDependencyError is raised when a resolve operation's in-flight
// set already contains the (scope, registration) pair being activated.
type CircularDependencyError struct {
	Chain []Service
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Chain))
	for i, s := range e.Chain {
		names[i] = s.String()
	}
	return fmt.Sprintf("ioc: circular dependency detected: %s", strings.Join(names, " -> "))
}

// NoMatchingScopeError is raised when a matching-scope(tag) registration
// finds no ancestor scope with the requested tag.
type NoMatchingScopeError struct {
	Tag string
}

func (e *NoMatchingScopeError) Error() string {
	return fmt.Sprintf("ioc: no ancestor scope tagged %q", e.Tag)
}

// InvalidRegistrationStateError is raised when the registry is mutated
// after its owning scope was built, outside of a sub-scope's own local
// registry.
type InvalidRegistrationStateError struct {
	Reason string
}

func (e *InvalidRegistrationStateError) Error() string {
	return fmt.Sprintf("ioc: invalid registration state: %s", e.Reason)
}

func (e *InvalidRegistrationStateError) Unwrap() error { return ErrRegistryBuilt }

// PipelinePhaseViolationError is raised when middleware is added to a
// pipeline kind that does not accept its declared phase.
type PipelinePhaseViolationError struct {
	PipelineKind string
	Phase        Phase
}

func (e *PipelinePhaseViolationError) Error() string {
	return fmt.Sprintf("ioc: phase %s is not valid for a %s pipeline", e.Phase, e.PipelineKind)
}

// ObjectDisposedError is raised when resolution is attempted against a
// scope whose disposal has already begun.
type ObjectDisposedError struct {
	ScopeTag string
}

func (e *ObjectDisposedError) Error() string {
	return fmt.Sprintf("ioc: lifetime scope %q has been disposed", e.ScopeTag)
}

func (e *ObjectDisposedError) Unwrap() error { return ErrScopeDisposed }

// IsComponentNotRegistered reports whether err is (or wraps) a
// ComponentNotRegisteredError, the one kind TryResolve swallows.
func IsComponentNotRegistered(err error) bool {
	var target *ComponentNotRegisteredError
	return errors.As(err, &target)
}

// IsCircularDependency reports whether err is (or wraps) a
// CircularDependencyError.
func IsCircularDependency(err error) bool {
	var target *CircularDependencyError
	return errors.As(err, &target)
}
