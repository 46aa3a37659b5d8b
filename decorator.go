package ioc

import "github.com/corewell/ioc/internal/core"

// DecoratorFunc wraps an already-activated instance of underlying,
// producing the value callers actually observe when they resolve the
// decorated service. The decoration middleware invokes decorators without
// parameters, so params is always empty; the parameters of the outer
// Resolve call are not passed on.
type DecoratorFunc func(instance any, params []Parameter) (any, error)

// NewDecorator builds a registration that decorates underlying: the
// decoration middleware applies it, most-recently-registered outermost,
// around whatever the service's other registrations produce.
func NewDecorator(underlying Service, fn DecoratorFunc, opts ...RegistrationOption) *Registration {
	activator := func(ctx *core.RequestContext, params []core.Parameter) (any, error) {
		var target any
		if ctx.DecoratorTarget != nil {
			target = *ctx.DecoratorTarget
		}
		return fn(target, params)
	}
	reg := NewRegistration(activator, nil, opts...)
	u := underlying
	reg.DecoratedService = &u
	reg.IsDecoratorReg = true
	return reg
}

// RegistrationSource synthesizes registrations on demand for a service
// family (Lazy[T], Meta[T], Owned[T], collections, factories, indexed
// lookups).
type RegistrationSource = core.RegistrationSource

// RegistrationAccessor looks up existing registrations for a service,
// letting a RegistrationSource discover what else is registered.
type RegistrationAccessor = core.RegistrationAccessor
