package ioc

import (
	"reflect"

	"github.com/corewell/ioc/internal/core"
)

// Service identifies something that can be resolved: a type alone, a type
// plus an opaque key, or (internally) a decorator's target service.
type Service = core.Service

// TypedService builds a Service identified purely by t.
func TypedService(t reflect.Type) Service { return core.NewTypedService(t) }

// KeyedService builds a Service identified by t plus key. A nil key
// degrades to TypedService.
func KeyedService(t reflect.Type, key any) Service { return core.NewKeyedService(t, key) }

// ServiceFor is a generic convenience over TypedService for the common
// case of identifying a service by a Go type parameter.
func ServiceFor[T any]() Service {
	return TypedService(reflect.TypeOf((*T)(nil)).Elem())
}

// KeyedServiceFor is the keyed counterpart to ServiceFor.
func KeyedServiceFor[T any](key any) Service {
	return KeyedService(reflect.TypeOf((*T)(nil)).Elem(), key)
}

// Lifetime selects which ancestor scope owns a shared registration's
// cached instance.
type Lifetime = core.Lifetime

// CurrentScope shares within whichever scope performs the resolve.
func CurrentScope() Lifetime { return core.CurrentScope() }

// RootScope always shares through the root scope.
func RootScope() Lifetime { return core.RootScope() }

// MatchingScope shares through the nearest ancestor scope tagged tag.
func MatchingScope(tag string) Lifetime { return core.MatchingScope(tag) }

// Sharing controls whether a registration's instance is cached at all.
type Sharing = core.Sharing

const (
	NotShared = core.NotShared
	Shared    = core.Shared
)

// Ownership controls whether a scope's disposer takes responsibility for a
// produced instance.
type Ownership = core.Ownership

const (
	OwnedByLifetimeScope = core.OwnedByLifetimeScope
	ExternallyOwned      = core.ExternallyOwned
)

// Parameter is the abstract value an activator may consult while building
// an instance.
type Parameter = core.Parameter

// NamedParameter, PositionalParameter, TypedParameter, and
// ResolvedParameter are the concrete Parameter implementations available
// to callers composing a resolve call.
type (
	NamedParameter      = core.NamedParameter
	PositionalParameter = core.PositionalParameter
	TypedParameter      = core.TypedParameter
	ResolvedParameter   = core.ResolvedParameter
)

// ParameterDescriptor describes the slot an activator wants filled.
type ParameterDescriptor = core.ParameterDescriptor

// RequestContext is the mutable, per-request state threaded through the
// resolution pipeline and visible to activators.
type RequestContext = core.RequestContext
