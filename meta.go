package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

// Meta pairs a resolved T with the metadata map of the registration that
// produced it.
type Meta[T any] struct {
	Value    T
	Metadata map[string]any
}

type metaSource[T any] struct{}

// NewMetaSource registers the adapter that lets callers resolve Meta[T],
// observing the metadata of whichever registration supplied the T.
func NewMetaSource[T any]() RegistrationSource { return metaSource[T]{} }

func (metaSource[T]) IsAdapterForIndividualComponents() bool { return false }

func (metaSource[T]) RegistrationsFor(service Service, accessor RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf(Meta[T]{})
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	underlying := ServiceFor[T]()
	activator := func(ctx *core.RequestContext, params []core.Parameter) (any, error) {
		regs, err := accessor(underlying)
		if err != nil {
			return nil, err
		}
		var meta map[string]any
		if len(regs) > 0 {
			meta = regs[len(regs)-1].Metadata
		}
		v, err := ctx.ResolveSub(underlying, ctx.ActivationScope, params)
		if err != nil {
			return nil, err
		}
		t, ok := v.(T)
		if !ok {
			return nil, errMismatchedType(underlying, v)
		}
		return Meta[T]{Value: t, Metadata: meta}, nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	return []*Registration{reg}, nil
}
