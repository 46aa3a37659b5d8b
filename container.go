// Package ioc implements an inversion-of-control container: a registry of
// component registrations, a tree of lifetime scopes, and a phased
// resolution pipeline that activates, shares, and decorates instances on
// demand.
package ioc

import (
	"github.com/corewell/ioc/internal/core"
	"github.com/corewell/ioc/internal/scopetree"
)

// Builder accumulates registrations and registration sources before the
// container is built. Once Build is called, the root scope's registry is
// sealed and no further registrations are accepted on it directly (child
// scopes may still register locally).
type Builder struct {
	root        *scopetree.Scope
	resolver    *scopetree.Resolver
	diagnostics core.DiagnosticListener
}

// BuilderOption configures a Builder at construction.
type BuilderOption func(*Builder)

// WithDiagnostics installs a DiagnosticListener consulted throughout the
// container's lifetime, including every scope derived from it.
func WithDiagnostics(listener DiagnosticListener) BuilderOption {
	return func(b *Builder) { b.diagnostics = listener }
}

// NewBuilder creates a Builder with a fresh root scope.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	b.root = scopetree.NewRoot(b.diagnostics)
	b.resolver = scopetree.NewResolver()
	return b
}

// Register adds reg as a default registration for every service it
// declares. Pass PreserveDefaults() to add it without outranking an
// already-registered default.
func (b *Builder) Register(reg *Registration, opts ...RegisterCallOption) error {
	call := registerCall{}
	for _, opt := range opts {
		opt(&call)
	}
	return b.root.Registry().Register(reg, call.preserveDefaults)
}

// RegisterCallOption configures one Register call.
type RegisterCallOption func(*registerCall)

type registerCall struct {
	preserveDefaults bool
}

// PreserveDefaults registers without overriding an existing default for
// the same service.
func PreserveDefaults() RegisterCallOption {
	return func(c *registerCall) { c.preserveDefaults = true }
}

// AddRegistrationSource installs src to synthesize registrations on
// demand for services it adapts (Lazy[T], Meta[T], Owned[T], collections,
// factories, indexed lookups).
func (b *Builder) AddRegistrationSource(src RegistrationSource) error {
	return b.root.Registry().AddRegistrationSource(src)
}

// OnRegistered installs a callback invoked synchronously whenever a
// registration is added to the root registry, directly or via a source.
func (b *Builder) OnRegistered(fn func(*Registration)) {
	b.root.Registry().OnRegistered(fn)
}

// OnRegistrationSourceAdded installs a callback invoked whenever a
// registration source is added to the root registry.
func (b *Builder) OnRegistrationSourceAdded(fn func(RegistrationSource)) {
	b.root.Registry().OnRegistrationSourceAdded(fn)
}

// Build seals the root registry and returns the root Container, eagerly
// activating every service flagged AutoActivate along the way.
func (b *Builder) Build() (*Container, error) {
	b.root.Registry().Seal()

	root := &Scope{raw: b.root, resolver: b.resolver}
	for _, svc := range b.root.Registry().AutoActivateServices() {
		if _, err := root.Resolve(svc); err != nil {
			return nil, err
		}
	}
	return &Container{Scope: root}, nil
}

// Container is the root of a built scope tree. It is also a Scope: every
// resolve, scope-begin, and disposal method works the same on a Container
// as on any child Scope.
type Container struct {
	*Scope
}
