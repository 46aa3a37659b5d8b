package core

import "reflect"

// ParameterDescriptor describes the slot an activator wants filled: a
// named/positional/typed hole the Parameter is asked whether it can
// supply. The core never interprets these beyond passing them through;
// the activator is the only party that consults Parameter values (spec
// §6).
type ParameterDescriptor struct {
	Name     string
	Type     reflect.Type
	Position int
}

// Parameter is the abstract value an activator may consult while building
// an instance. The core treats parameters as opaque payload carried on the
// request context and never calls CanSupplyValue itself; activators and
// registration middleware are the callers.
type Parameter interface {
	// CanSupplyValue reports whether this parameter can satisfy d given
	// the in-flight request context, returning a lazily-evaluated
	// supplier when it can.
	CanSupplyValue(d ParameterDescriptor, ctx *RequestContext) (bool, func() (any, error))
}

// NamedParameter supplies a fixed value for a parameter matched by name.
type NamedParameter struct {
	Name  string
	Value any
}

func (p NamedParameter) CanSupplyValue(d ParameterDescriptor, _ *RequestContext) (bool, func() (any, error)) {
	if d.Name != p.Name {
		return false, nil
	}
	v := p.Value
	return true, func() (any, error) { return v, nil }
}

// PositionalParameter supplies a fixed value for a parameter matched by
// zero-based position.
type PositionalParameter struct {
	Position int
	Value    any
}

func (p PositionalParameter) CanSupplyValue(d ParameterDescriptor, _ *RequestContext) (bool, func() (any, error)) {
	if d.Position != p.Position {
		return false, nil
	}
	v := p.Value
	return true, func() (any, error) { return v, nil }
}

// TypedParameter supplies a fixed value for any parameter whose type is
// assignable from Value's type.
type TypedParameter struct {
	Type  reflect.Type
	Value any
}

func (p TypedParameter) CanSupplyValue(d ParameterDescriptor, _ *RequestContext) (bool, func() (any, error)) {
	if d.Type == nil || p.Type == nil || !p.Type.AssignableTo(d.Type) {
		return false, nil
	}
	v := p.Value
	return true, func() (any, error) { return v, nil }
}

// ResolvedParameter supplies a value computed lazily from the request
// context, e.g. by resolving another service. Predicate decides whether
// this parameter applies to d; Resolve produces the value on demand.
type ResolvedParameter struct {
	Predicate func(d ParameterDescriptor, ctx *RequestContext) bool
	Resolve   func(d ParameterDescriptor, ctx *RequestContext) (any, error)
}

func (p ResolvedParameter) CanSupplyValue(d ParameterDescriptor, ctx *RequestContext) (bool, func() (any, error)) {
	if p.Predicate == nil || !p.Predicate(d, ctx) {
		return false, nil
	}
	return true, func() (any, error) { return p.Resolve(d, ctx) }
}
