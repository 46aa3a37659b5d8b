package ioc

import (
	"context"

	"github.com/corewell/ioc/internal/core"
	"github.com/corewell/ioc/internal/scopetree"
)

// Scope is one node in the lifetime-scope tree: a resolution boundary with
// its own registry view, shared-instance cache, and disposer.
type Scope struct {
	raw      *scopetree.Scope
	resolver *scopetree.Resolver
}

// ID returns the scope's identity, unique within its tree.
func (s *Scope) ID() string { return s.raw.ID() }

// Tag returns the scope's tag ("root" for the tree's root, "" for an
// untagged child scope unless BeginScope was given one).
func (s *Scope) Tag() string { return s.raw.Tag() }

// IsRoot reports whether this is the tree's root scope.
func (s *Scope) IsRoot() bool { return s.raw.IsRoot() }

// Register adds a local registration to this scope's own registry,
// visible to resolves made from this scope and its descendants but not
// from its ancestors (spec §4.1). Only legal before the scope disposes;
// the root scope's own Register is routed through Builder instead.
func (s *Scope) Register(reg *Registration, opts ...RegisterCallOption) error {
	call := registerCall{}
	for _, opt := range opts {
		opt(&call)
	}
	return s.raw.Registry().Register(reg, call.preserveDefaults)
}

// BeginScope creates a child scope. tag, if given, lets a descendant's
// matching-scope(tag) registrations find it via FindTag; omit it for an
// ordinary untagged child scope.
func (s *Scope) BeginScope(tag ...string) *Scope {
	t := ""
	if len(tag) > 0 {
		t = tag[0]
	}
	child := s.raw.BeginScope(t)
	return &Scope{raw: child, resolver: s.resolver}
}

// Resolve activates (or returns the cached instance of) svc, per spec
// §4.4's resolve operation.
func (s *Scope) Resolve(svc Service, params ...Parameter) (any, error) {
	return s.resolver.Resolve(s.raw, svc, params, nil)
}

// TryResolve behaves like Resolve but returns (nil, false, nil) instead of
// a ComponentNotRegisteredError when svc has no applicable registration;
// every other error is still returned.
func (s *Scope) TryResolve(svc Service, params ...Parameter) (any, bool, error) {
	instance, err := s.Resolve(svc, params...)
	if err != nil {
		if core.IsComponentNotRegistered(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return instance, true, nil
}

// IsRegistered reports whether svc has at least one applicable
// registration, local or inherited.
func (s *Scope) IsRegistered(svc Service) (bool, error) {
	return s.raw.Registry().IsRegistered(svc)
}

// Dispose seals the scope and synchronously disposes every instance it
// owns, in reverse activation order. Disposal is idempotent.
func (s *Scope) Dispose() error { return s.raw.Dispose() }

// DisposeAsync is Dispose, preferring an instance's AsyncDisposable
// implementation over its Disposable one when it has both.
func (s *Scope) DisposeAsync(ctx context.Context) error { return s.raw.DisposeAsync(ctx) }

// IsDisposed reports whether Dispose or DisposeAsync has run.
func (s *Scope) IsDisposed() bool { return s.raw.IsDisposed() }

// OnCurrentScopeEnding registers a callback run when this scope is
// disposed, before its disposer runs.
func (s *Scope) OnCurrentScopeEnding(fn func()) {
	s.raw.OnCurrentScopeEnding(func(*scopetree.Scope) { fn() })
}

// OnChildLifetimeScopeBeginning registers a callback run against every
// child scope created directly from this one, before BeginScope returns
// it to the caller.
func (s *Scope) OnChildLifetimeScopeBeginning(fn func(*Scope)) {
	s.raw.OnChildLifetimeScopeBeginning(func(child *scopetree.Scope) {
		fn(&Scope{raw: child, resolver: s.resolver})
	})
}

// OnResolveOperationBeginning registers a callback run whenever a new
// resolve operation begins at this scope — a direct Resolve/TryResolve
// call on it, not a recursive sub-resolve nested inside one already in
// flight.
func (s *Scope) OnResolveOperationBeginning(fn func(*Scope, Service)) {
	s.raw.OnResolveOperationBeginning(func(scope *scopetree.Scope, svc core.Service) {
		fn(&Scope{raw: scope, resolver: s.resolver}, svc)
	})
}
