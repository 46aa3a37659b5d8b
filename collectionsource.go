package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

type collectionSource[T any] struct{}

// NewCollectionSource registers the adapter that lets callers resolve
// []T, an enumeration of every registration for T that is not marked
// ExcludeFromCollections, in the registry's enumeration order: fixed, then
// defaults, source-originated and preserve-defaults registrations, each
// bucket in registration order, local registrations before inherited ones.
func NewCollectionSource[T any]() RegistrationSource { return collectionSource[T]{} }

func (collectionSource[T]) IsAdapterForIndividualComponents() bool { return false }

func (collectionSource[T]) RegistrationsFor(service Service, accessor RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf([]T(nil))
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	underlying := ServiceFor[T]()
	activator := func(ctx *core.RequestContext, params []core.Parameter) (any, error) {
		regs, err := accessor(underlying)
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(regs))
		for _, reg := range regs {
			if reg.Options.Has(core.ExcludeFromCollections) {
				continue
			}
			v, err := ctx.ResolveRegistrationSub(reg, ctx.ActivationScope, nil)
			if err != nil {
				return nil, err
			}
			t, ok := v.(T)
			if !ok {
				return nil, errMismatchedType(underlying, v)
			}
			out = append(out, t)
		}
		return out, nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	return []*Registration{reg}, nil
}
