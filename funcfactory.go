package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

// Func is a factory delegate: each call triggers a fresh resolve of T
// within the scope that activated the Func itself. T's own lifetime and
// sharing still apply, so a Shared T yields its cached instance.
type Func[T any] func() (T, error)

type funcSource[T any] struct{}

// NewFuncSource registers the adapter that lets callers resolve Func[T], a
// closure that re-resolves T on every call.
func NewFuncSource[T any]() RegistrationSource { return funcSource[T]{} }

func (funcSource[T]) IsAdapterForIndividualComponents() bool { return false }

func (funcSource[T]) RegistrationsFor(service Service, _ RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf(Func[T](nil))
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	underlying := ServiceFor[T]()
	activator := func(ctx *core.RequestContext, _ []core.Parameter) (any, error) {
		scope := ctx.ActivationScope
		resolveSub := ctx.ResolveSub
		var fn Func[T] = func() (T, error) {
			var zero T
			v, err := resolveSub(underlying, scope, nil)
			if err != nil {
				return zero, err
			}
			t, ok := v.(T)
			if !ok {
				return zero, errMismatchedType(underlying, v)
			}
			return t, nil
		}
		return fn, nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	return []*Registration{reg}, nil
}

// FuncWithParam is the single-parameter factory-delegate variant: each
// call supplies an additional value the underlying activator can consult
// as a TypedParameter.
type FuncWithParam[P any, T any] func(p P) (T, error)

type funcParamSource[P any, T any] struct{}

// NewFuncWithParamSource registers the adapter for FuncWithParam[P, T].
func NewFuncWithParamSource[P any, T any]() RegistrationSource { return funcParamSource[P, T]{} }

func (funcParamSource[P, T]) IsAdapterForIndividualComponents() bool { return false }

func (funcParamSource[P, T]) RegistrationsFor(service Service, _ RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf(FuncWithParam[P, T](nil))
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	underlying := ServiceFor[T]()
	paramType := reflect.TypeOf((*P)(nil)).Elem()
	activator := func(ctx *core.RequestContext, _ []core.Parameter) (any, error) {
		scope := ctx.ActivationScope
		resolveSub := ctx.ResolveSub
		var fn FuncWithParam[P, T] = func(p P) (T, error) {
			var zero T
			v, err := resolveSub(underlying, scope, []core.Parameter{core.TypedParameter{Type: paramType, Value: p}})
			if err != nil {
				return zero, err
			}
			t, ok := v.(T)
			if !ok {
				return zero, errMismatchedType(underlying, v)
			}
			return t, nil
		}
		return fn, nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	return []*Registration{reg}, nil
}
