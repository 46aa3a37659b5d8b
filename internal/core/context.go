package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Disposable is a synchronously-disposable resource. Registration pushes
// instances implementing it onto the activating scope's disposer when
// Ownership is OwnedByLifetimeScope (spec §4.5).
type Disposable interface {
	Dispose() error
}

// AsyncDisposable is an asynchronously-disposable resource. A scope's
// DisposeAsync prefers this over Disposable when an instance implements
// both (spec §4.5).
type AsyncDisposable interface {
	DisposeAsync(ctx context.Context) error
}

// Scope is the minimal surface the core's pipeline and resolve-operation
// logic need from a lifetime scope. The concrete tree implementation
// (package scopetree) satisfies this interface; keeping it here lets
// package pipeline depend on scopes without importing scopetree, avoiding
// an import cycle (scopetree needs pipeline to build the handlers it
// invokes).
type Scope interface {
	ID() string
	Tag() string
	Parent() (Scope, bool)
	IsRoot() bool
	Root() Scope
	// FindTag walks from this scope through ancestors, inclusive,
	// returning the nearest scope tagged tag.
	FindTag(tag string) (Scope, bool)
	// GetOrCreateSharedInstance implements the single-flight shared
	// cache lookup from spec §4.3/§5: it locks the scope's one
	// instance-cache lock, returns a cached instance for regID if
	// present, or calls create (with the lock held) and caches the
	// result otherwise.
	GetOrCreateSharedInstance(regID uuid.UUID, create func() (any, error)) (any, error)
	// TrackDisposable appends d to the scope's disposer, to be run in
	// reverse order when the scope is disposed.
	TrackDisposable(d any)
	IsDisposed() bool
}

// DecoratorLookup finds decorators registered for a service. The registry
// implements this; the decoration middleware in package pipeline consults
// it through the request context to avoid importing package registry
// directly.
type DecoratorLookup interface {
	DecoratorsFor(service Service) ([]*Registration, error)
}

// Operation is a single user-initiated Resolve call and every recursive
// resolution it triggers (spec §4.4). Cycle detection, diagnostics, and
// deferred request-completion callbacks are all scoped to one Operation.
type Operation struct {
	ID          string
	EntryScope  Scope
	Diagnostics DiagnosticListener

	stack        []inFlightKey
	serviceChain []Service
	completing   []func()
	depth        int
}

type inFlightKey struct {
	ScopeID string
	RegID   uuid.UUID
}

// NewOperation starts a new resolve operation rooted at entryScope.
func NewOperation(entryScope Scope, diagnostics DiagnosticListener) *Operation {
	if diagnostics == nil {
		diagnostics = NoopListener{}
	}
	return &Operation{
		ID:          uuid.NewString(),
		EntryScope:  entryScope,
		Diagnostics: diagnostics,
	}
}

// Enter pushes (scope, registration) onto the in-flight stack, returning a
// CircularDependencyError if the pair is already present. The caller must
// call the returned leave function exactly once, even on failure, to pop
// the entry (spec §4.5: "pushed before activation and popped after, even
// on failure").
func (op *Operation) Enter(scope Scope, reg *Registration, service Service) (leave func(), err error) {
	key := inFlightKey{ScopeID: scope.ID(), RegID: reg.ID}
	for _, k := range op.stack {
		if k == key {
			return func() {}, &CircularDependencyError{Chain: append(append([]Service{}, op.serviceChain...), service)}
		}
	}

	op.stack = append(op.stack, key)
	op.serviceChain = append(op.serviceChain, service)
	op.depth++
	popped := false
	leave = func() {
		if popped {
			return
		}
		popped = true
		op.depth--
		// Pop the most recent matching entry (stack discipline: the
		// caller always leaves in the reverse order it entered).
		for i := len(op.stack) - 1; i >= 0; i-- {
			if op.stack[i] == key {
				op.stack = append(op.stack[:i], op.stack[i+1:]...)
				op.serviceChain = append(op.serviceChain[:i], op.serviceChain[i+1:]...)
				break
			}
		}
		if op.depth == 0 {
			op.runCompletions()
		}
	}
	return leave, nil
}

// OnRequestCompleting registers a callback deferred until the outermost
// call into this operation finishes (spec §4.4).
func (op *Operation) OnRequestCompleting(fn func()) {
	op.completing = append(op.completing, fn)
}

func (op *Operation) runCompletions() {
	cbs := op.completing
	op.completing = nil
	for _, fn := range cbs {
		fn()
	}
}

// RequestContext is the mutable, per-request state threaded through the
// pipeline (spec §4.4).
type RequestContext struct {
	Operation       *Operation
	ActivationScope Scope
	Registration    *Registration
	Service         Service
	Parameters      []Parameter
	Instance        any

	NewInstanceActivated bool
	PhaseReached         Phase

	// DecoratorTarget holds the instance being decorated when this
	// request is the synthesized sub-request for a decorator (spec
	// §4.3's "decorator target hint"). Nil for ordinary requests.
	DecoratorTarget *any

	// Decorators is consulted by the decoration middleware to find
	// decorators registered for Service.
	Decorators DecoratorLookup

	// ResolveSub lets a middleware (decoration, parameter-rewriting)
	// recursively resolve another service or registration within this
	// operation. It is wired up by the orchestrating scope layer.
	ResolveSub func(service Service, scope Scope, params []Parameter) (any, error)

	// ResolveRegistrationSub runs a specific registration's own pipeline
	// against scope, used by the decoration middleware to invoke a
	// decorator registration directly rather than through service
	// lookup.
	ResolveRegistrationSub func(reg *Registration, scope Scope, decoratorTarget any) (any, error)
}

// NewRequestContext creates the context for one pipeline invocation.
func NewRequestContext(op *Operation, scope Scope, reg *Registration, service Service, params []Parameter) *RequestContext {
	return &RequestContext{
		Operation:       op,
		ActivationScope: scope,
		Registration:    reg,
		Service:         service,
		Parameters:      params,
	}
}

// ChangeScope lets scope-selection middleware reassign the current
// activation scope (spec §4.4).
func (c *RequestContext) ChangeScope(s Scope) { c.ActivationScope = s }

// ChangeParameters lets middleware rewrite the parameter list before
// activation (spec §4.4: legal before activation).
func (c *RequestContext) ChangeParameters(params []Parameter) error {
	if c.PhaseReached >= Activation {
		return fmt.Errorf("ioc: cannot change parameters after activation has started")
	}
	c.Parameters = params
	return nil
}
