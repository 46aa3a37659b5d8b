package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

// Lazy defers resolution of T until Value is first called, then caches the
// result (or error) for subsequent calls on the same Lazy.
type Lazy[T any] struct {
	once    func() (T, error)
	resolve func() (T, error)
}

// Value resolves (and, after the first call, returns the cached result
// of) the underlying T.
func (l Lazy[T]) Value() (T, error) { return l.once() }

func newLazy[T any](resolve func() (T, error)) Lazy[T] {
	var (
		cached T
		err    error
		done   bool
	)
	l := Lazy[T]{resolve: resolve}
	l.once = func() (T, error) {
		if !done {
			cached, err = resolve()
			done = true
		}
		return cached, err
	}
	return l
}

type lazySource[T any] struct{}

// NewLazySource registers the adapter that lets callers resolve Lazy[T],
// deferring the underlying T's activation until Lazy.Value is called.
func NewLazySource[T any]() RegistrationSource { return lazySource[T]{} }

func (lazySource[T]) IsAdapterForIndividualComponents() bool { return false }

func (lazySource[T]) RegistrationsFor(service Service, _ RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf(Lazy[T]{})
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	underlying := ServiceFor[T]()
	activator := func(ctx *core.RequestContext, _ []core.Parameter) (any, error) {
		scope := ctx.ActivationScope
		resolveSub := ctx.ResolveSub
		return newLazy(func() (T, error) {
			var zero T
			v, err := resolveSub(underlying, scope, nil)
			if err != nil {
				return zero, err
			}
			t, ok := v.(T)
			if !ok {
				return zero, &core.DependencyResolutionError{Chain: []Service{underlying}, Cause: errMismatchedType(underlying, v)}
			}
			return t, nil
		}), nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	return []*Registration{reg}, nil
}
