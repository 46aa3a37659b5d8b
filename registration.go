package ioc

import (
	"github.com/corewell/ioc/internal/core"
)

// Activator produces a raw instance from an in-flight request and the
// parameters supplied to it. The container never reflects on a produced
// value beyond checking whether it implements Disposable.
type Activator = core.Activator

// Registration is an immutable declared recipe for producing instances of
// one or more services. Build one with NewRegistration and the With*
// options below, then pass it to Builder.Register.
type Registration = core.Registration

// RegistrationOption configures a Registration at construction time.
type RegistrationOption func(*core.Registration)

// NewRegistration creates a registration for services, activated by
// activator, with CurrentScope/NotShared/OwnedByLifetimeScope defaults,
// customized by opts.
func NewRegistration(activator Activator, services []Service, opts ...RegistrationOption) *Registration {
	reg := core.NewRegistration(activator, services, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// WithLifetime overrides the registration's lifetime strategy.
func WithLifetime(l Lifetime) RegistrationOption {
	return func(r *core.Registration) { r.Lifetime = l }
}

// WithSharing overrides the registration's sharing policy.
func WithSharing(s Sharing) RegistrationOption {
	return func(r *core.Registration) { r.Sharing = s }
}

// WithOwnership overrides the registration's ownership policy.
func WithOwnership(o Ownership) RegistrationOption {
	return func(r *core.Registration) { r.Ownership = o }
}

// WithMetadata attaches a key/value pair to the registration's metadata
// map.
func WithMetadata(key string, value any) RegistrationOption {
	return func(r *core.Registration) { r.Metadata[key] = value }
}

// Fixed marks the registration as the canonical default for its services,
// overriding every default and source-originated registration.
func Fixed() RegistrationOption {
	return func(r *core.Registration) { r.Options |= core.Fixed }
}

// ExcludeFromCollections omits the registration from collection-adapter
// enumeration even though it otherwise satisfies a service.
func ExcludeFromCollections() RegistrationOption {
	return func(r *core.Registration) { r.Options |= core.ExcludeFromCollections }
}

// AutoActivate flags one of the registration's services so the scope that
// owns it activates the registration eagerly when built, rather than
// waiting for the first resolve (spec's auto-activate sentinel). index
// selects which entry in services to flag; most registrations have only
// one service and pass 0.
func AutoActivate(index int) RegistrationOption {
	return func(r *core.Registration) {
		if index < 0 || index >= len(r.Services) {
			return
		}
		r.Services[index] = r.Services[index].WithAutoActivate()
	}
}

// Decorates turns the registration into a decorator for underlying: it is
// never a direct default for the decorated service, only applied by the
// decoration middleware around whatever the service would otherwise
// produce.
func Decorates(underlying Service) RegistrationOption {
	return func(r *core.Registration) {
		u := underlying
		r.DecoratedService = &u
		r.IsDecoratorReg = true
	}
}
