// Package core holds the vocabulary shared by every resolution subsystem:
// service keys, registrations, parameters, the scope interface, the
// resolve operation, and the error taxonomy. Keeping these types in one
// leaf package lets the registry and pipeline packages share a single
// model without importing one another; the scope-tree package imports
// both of them.
package core

import (
	"fmt"
	"reflect"
)

// Kind discriminates the three service-key variants from spec §3: a
// service asked for by type alone, by type plus an opaque key, or the
// internal decorator-target variant used only by the pipeline's plumbing.
type Kind int

const (
	// Typed identifies a service purely by its nominal type.
	Typed Kind = iota
	// Keyed identifies a service by type plus an equality-comparable key.
	Keyed
	// Decorator identifies the internal "what is being decorated" service
	// used when synthesizing a decorator's sub-request. User code never
	// resolves a Decorator service directly.
	Decorator
)

func (k Kind) String() string {
	switch k {
	case Typed:
		return "Typed"
	case Keyed:
		return "Keyed"
	case Decorator:
		return "Decorator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Service is the canonical identity of a thing that can be resolved. It is
// a closed sum type over Kind; equality follows spec §3 exactly: typed
// services compare type identifiers, keyed services additionally compare
// keys, and decorator services compare the underlying service plus the
// decorator discriminator.
type Service struct {
	kind  Kind
	typ   reflect.Type
	key   any
	auto  bool
	isoTag string
}

// NewTypedService builds the Typed variant for t.
func NewTypedService(t reflect.Type) Service {
	return Service{kind: Typed, typ: t}
}

// NewKeyedService builds the Keyed variant for t and key.
func NewKeyedService(t reflect.Type, key any) Service {
	if key == nil {
		return NewTypedService(t)
	}
	return Service{kind: Keyed, typ: t, key: key}
}

// NewDecoratorService builds the internal Decorator variant used when the
// pipeline synthesizes a sub-request for a decorator's target instance.
func NewDecoratorService(underlying Service) Service {
	return Service{kind: Decorator, typ: underlying.typ, key: underlying.key}
}

// WithAutoActivate returns a copy of s flagged with the sentinel
// auto-activate bit described in spec §3: a service whose mere presence on
// a registration marks it for eager activation when its scope is built.
func (s Service) WithAutoActivate() Service {
	s.auto = true
	return s
}

// IsAutoActivate reports whether s carries the auto-activate sentinel.
func (s Service) IsAutoActivate() bool { return s.auto }

// ScopeIsolated tags a service as belonging only to a particular sub-scope,
// per spec §3's "scope-isolated wrapper". The tag is advisory metadata
// consulted by registration sources that only want to apply within a
// sub-tree; the registry does not special-case it beyond equality.
func (s Service) ScopeIsolated(tag string) Service {
	s.isoTag = tag
	return s
}

// IsolationTag returns the scope-isolation tag, if any.
func (s Service) IsolationTag() (string, bool) {
	return s.isoTag, s.isoTag != ""
}

// Kind returns the service's variant.
func (s Service) Kind() Kind { return s.kind }

// Type returns the nominal type identifier.
func (s Service) Type() reflect.Type { return s.typ }

// Key returns the opaque key for a Keyed service, or nil.
func (s Service) Key() any { return s.key }

// Equal implements spec §3's equality rule.
func (s Service) Equal(other Service) bool {
	if s.kind != other.kind || s.typ != other.typ {
		return false
	}
	switch s.kind {
	case Keyed:
		return s.key == other.key
	case Decorator:
		return s.key == other.key
	default:
		return true
	}
}

func (s Service) String() string {
	name := "<nil>"
	if s.typ != nil {
		name = s.typ.String()
	}
	switch s.kind {
	case Keyed:
		return fmt.Sprintf("%s[key=%v]", name, s.key)
	case Decorator:
		return fmt.Sprintf("decorator(%s)", name)
	default:
		return name
	}
}
