package core

import "github.com/google/uuid"

// Activator produces a raw instance from an in-flight request context and
// the parameters supplied to it. It is opaque to the core: the core never
// reflects on a produced value beyond checking Disposable (spec §6).
type Activator func(ctx *RequestContext, params []Parameter) (any, error)

// Options is a bitset of per-registration flags (spec §3).
type Options uint8

const (
	// Fixed pins a registration as the canonical default for its
	// services, overriding every other bucket.
	Fixed Options = 1 << iota
	// ExcludeFromCollections omits a registration from collection-adapter
	// enumeration (e.g. IEnumerable<T> style resolution) even though it
	// otherwise satisfies the service.
	ExcludeFromCollections
)

func (o Options) Has(flag Options) bool { return o&flag != 0 }

// Registration is an immutable declared recipe for producing instances of
// one or more services (spec §3). Every field is frozen at construction;
// the only mutable state associated with a registration lives in the
// registry (which bucket it sits in) and in scopes (its cached instance).
type Registration struct {
	ID       uuid.UUID
	Services []Service
	Activator Activator
	Lifetime  Lifetime
	Sharing   Sharing
	Ownership Ownership
	Metadata  map[string]any
	Options   Options

	// RegistrationMiddleware holds registration-level middleware declared
	// directly on this registration, added to its registration pipeline
	// alongside the defaults. Most registrations leave it nil and rely
	// purely on the default middleware chain.
	RegistrationMiddleware []MiddlewareEntry

	// DecoratedService is set when this registration is a decorator: the
	// service it wraps, not one it independently provides.
	DecoratedService *Service
	IsDecoratorReg   bool
}

// NewRegistration creates an immutable registration. Services lists the
// services the registration provides; a decorator built by the root
// package's NewDecorator leaves it empty and names the service it wraps in
// DecoratedService instead.
func NewRegistration(activator Activator, services []Service, lifetime Lifetime, sharing Sharing, ownership Ownership) *Registration {
	return &Registration{
		ID:        uuid.New(),
		Services:  services,
		Activator: activator,
		Lifetime:  lifetime,
		Sharing:   sharing,
		Ownership: ownership,
		Metadata:  map[string]any{},
	}
}

// ProvidesService reports whether r declares service among its Services.
func (r *Registration) ProvidesService(service Service) bool {
	for _, s := range r.Services {
		if s.Equal(service) {
			return true
		}
	}
	return false
}

// MiddlewareEntry pairs a middleware with the phase/pipeline-kind it was
// declared for, used by Registration.RegistrationMiddleware.
type MiddlewareEntry struct {
	Phase      Phase
	Mode       InsertMode
	Name       string
	Middleware any // concrete type supplied by package pipeline; kept as
	// `any` here purely to avoid a core -> pipeline import cycle. The
	// pipeline package performs the type assertion back to its own
	// Middleware function type when building.
}

// RegistrationAccessor looks up existing registrations for a service,
// letting a RegistrationSource discover what else is registered (spec
// §3, "Sources may invoke accessor(otherService)").
type RegistrationAccessor func(service Service) ([]*Registration, error)

// RegistrationSource synthesizes registrations on demand for a service
// family (spec §3/§4.1), e.g. Lazy[T], Meta[T], Owned[T], collections,
// factories, and indexed lookups.
type RegistrationSource interface {
	// IsAdapterForIndividualComponents reports whether this source
	// produces one adapter registration per existing registration of the
	// wrapped service (true) or at most one registration per service
	// (false).
	IsAdapterForIndividualComponents() bool

	// RegistrationsFor returns the registrations this source contributes
	// for service, using accessor to discover what else is registered.
	RegistrationsFor(service Service, accessor RegistrationAccessor) ([]*Registration, error)
}
