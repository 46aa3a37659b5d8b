package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

// KeyedIndex is a lookup of T by an explicit, known set of keys. Unlike
// the other adapters, it cannot discover which keys exist on its own —
// registries do not enumerate the keys in use for a type — so the keys it
// serves are fixed at NewKeyedIndexSource time.
type KeyedIndex[K comparable, T any] struct {
	values map[K]T
}

// Get returns the value registered under key, if any.
func (idx KeyedIndex[K, T]) Get(key K) (T, bool) {
	v, ok := idx.values[key]
	return v, ok
}

// Keys returns every key the index was built to serve.
func (idx KeyedIndex[K, T]) Keys() []K {
	keys := make([]K, 0, len(idx.values))
	for k := range idx.values {
		keys = append(keys, k)
	}
	return keys
}

type keyedIndexSource[K comparable, T any] struct {
	keys []K
}

// NewKeyedIndexSource registers the adapter for KeyedIndex[K, T], resolved
// by looking up each of keys against its own KeyedService(T, key)
// registration.
func NewKeyedIndexSource[K comparable, T any](keys ...K) RegistrationSource {
	return keyedIndexSource[K, T]{keys: keys}
}

func (keyedIndexSource[K, T]) IsAdapterForIndividualComponents() bool { return false }

func (s keyedIndexSource[K, T]) RegistrationsFor(service Service, _ RegistrationAccessor) ([]*Registration, error) {
	wrapperType := reflect.TypeOf(KeyedIndex[K, T]{})
	if service.Kind() != core.Typed || service.Type() != wrapperType {
		return nil, nil
	}

	activator := func(ctx *core.RequestContext, params []core.Parameter) (any, error) {
		values := make(map[K]T, len(s.keys))
		for _, key := range s.keys {
			underlying := KeyedServiceFor[T](key)
			v, err := ctx.ResolveSub(underlying, ctx.ActivationScope, nil)
			if err != nil {
				return nil, err
			}
			t, ok := v.(T)
			if !ok {
				return nil, errMismatchedType(underlying, v)
			}
			values[key] = t
		}
		return KeyedIndex[K, T]{values: values}, nil
	}

	reg := core.NewRegistration(activator, []Service{service}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	return []*Registration{reg}, nil
}
