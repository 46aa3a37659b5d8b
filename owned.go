package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

// Owned hands the caller a T along with a Release function that disposes
// it. The Owned wrapper itself is never added to a scope's disposer. T is
// resolved through its own registration, so when that registration is
// OwnedByLifetimeScope the activating scope's disposer tracks T as well.
type Owned[T any] struct {
	Value   T
	release func() error
}

// Release disposes the owned value, if it implements Disposable. Safe to
// call multiple times; only the first has an effect.
func (o *Owned[T]) Release() error {
	if o.release == nil {
		return nil
	}
	fn := o.release
	o.release = nil
	return fn()
}

type ownedSource[T any] struct{}

// NewOwnedSource registers the adapter that lets callers resolve Owned[T]
// and take over disposal responsibility for the underlying T themselves.
func NewOwnedSource[T any]() RegistrationSource { return ownedSource[T]{} }

func (ownedSource[T]) IsAdapterForIndividualComponents() bool { return false }

func (ownedSource[T]) RegistrationsFor(service Service, _ RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf((*Owned[T])(nil))
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	underlying := ServiceFor[T]()
	activator := func(ctx *core.RequestContext, params []core.Parameter) (any, error) {
		v, err := ctx.ResolveSub(underlying, ctx.ActivationScope, params)
		if err != nil {
			return nil, err
		}
		t, ok := v.(T)
		if !ok {
			return nil, errMismatchedType(underlying, v)
		}
		release := func() error {
			if d, ok := any(t).(core.Disposable); ok {
				return d.Dispose()
			}
			return nil
		}
		return &Owned[T]{Value: t, release: release}, nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.ExternallyOwned)
	return []*Registration{reg}, nil
}
