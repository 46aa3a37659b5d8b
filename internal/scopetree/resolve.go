package scopetree

import (
	"fmt"
	"sync"

	"github.com/corewell/ioc/internal/core"
	"github.com/corewell/ioc/internal/pipeline"
)

// pipelines caches the built service-level and per-registration handlers
// for one scope tree. It is shared by every Scope derived from the same
// root, since the service pipeline's shape does not depend on which scope
// issues a resolve.
type pipelines struct {
	mu            sync.Mutex
	servicePipes  map[pipelineKey]pipeline.Handler
	registrations map[string]pipeline.Handler
}

type pipelineKey struct {
	kind string
	typ  string
	key  any
}

func newPipelines() *pipelines {
	return &pipelines{
		servicePipes:  make(map[pipelineKey]pipeline.Handler),
		registrations: make(map[string]pipeline.Handler),
	}
}

func toPipelineKey(s core.Service) pipelineKey {
	k := pipelineKey{kind: s.Kind().String(), key: s.Key()}
	if s.Type() != nil {
		k.typ = s.Type().String()
	}
	return k
}

// servicePipelineFor builds (once, cached) the service pipeline for svc.
// Its terminal dispatches, at invocation time, to whichever registration's
// own built pipeline ctx.Registration names — this is what lets one
// compiled service pipeline serve every registration of that service
// (spec §4.2's "the terminal service-pipeline-end middleware chains into
// the registration's own built pipeline").
func (p *pipelines) servicePipelineFor(svc core.Service) pipeline.Handler {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := toPipelineKey(svc)
	if h, ok := p.servicePipes[key]; ok {
		return h
	}

	builder := pipeline.NewServiceBuilder()
	for _, item := range pipeline.BuildServiceDefaults() {
		_ = builder.Use(item.Phase, item.Mode, item.Name, item.Mw)
	}

	terminal := func(ctx *core.RequestContext) error {
		regHandler := p.registrationPipelineForLocked(ctx.Registration)
		return regHandler(ctx)
	}

	h := builder.Build(terminal)
	p.servicePipes[key] = h
	return h
}

// registrationPipelineFor builds (once, cached by registration identity)
// the registration pipeline for reg, composed of the default middleware
// plus any registration-specific middleware reg declares.
func (p *pipelines) registrationPipelineFor(reg *core.Registration) pipeline.Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registrationPipelineForLocked(reg)
}

func (p *pipelines) registrationPipelineForLocked(reg *core.Registration) pipeline.Handler {
	id := reg.ID.String()
	if h, ok := p.registrations[id]; ok {
		return h
	}

	builder := pipeline.NewRegistrationBuilder()
	items := pipeline.BuildRegistrationDefaults()
	for _, entry := range reg.RegistrationMiddleware {
		mw, ok := entry.Middleware.(pipeline.Middleware)
		if !ok {
			continue
		}
		items = append(items, pipeline.Item{Phase: entry.Phase, Mode: entry.Mode, Name: entry.Name, Mw: mw})
	}
	// Keep registration-declared middleware monotonic alongside the
	// defaults by inserting through Use in phase order rather than
	// UseRange, which requires a single monotonic batch.
	for _, it := range items {
		_ = builder.Use(it.Phase, it.Mode, it.Name, it.Mw)
	}

	h := builder.Build(nil)
	p.registrations[id] = h
	return h
}

// Resolver drives resolveComponent against a scope tree: it owns the
// shared pipeline cache for every scope rooted at the same tree. The
// diagnostics listener is read from the scope a resolve starts at.
type Resolver struct {
	pipelines *pipelines
}

// NewResolver creates a resolver for a fresh scope tree.
func NewResolver() *Resolver {
	return &Resolver{pipelines: newPipelines()}
}

// Resolve runs spec §4.4's resolve operation for svc against scope,
// starting (or joining, if op is non-nil) a resolve operation.
func (r *Resolver) Resolve(scope *Scope, svc core.Service, params []core.Parameter, op *core.Operation) (any, error) {
	if scope.IsDisposed() {
		return nil, &core.ObjectDisposedError{ScopeTag: scope.tag}
	}

	listener := scope.diagnostics
	owns := op == nil
	if owns {
		op = core.NewOperation(scope, listener)
		scope.fireResolveOperationBeginning(svc)
		enabled := listener != nil && listener.IsEnabled()
		if enabled {
			listener.Write(core.EventOperationStart, core.OperationEvent{OperationID: op.ID, EntryScope: scope.id, Service: svc})
		}
	}

	reg, ok, err := scope.registry.TryGetServiceRegistration(svc)
	if err != nil {
		return nil, r.finishOperation(op, owns, listener, svc, nil, err)
	}
	if !ok {
		return nil, r.finishOperation(op, owns, listener, svc, nil, &core.ComponentNotRegisteredError{Service: svc})
	}

	instance, err := r.resolveRegistration(scope, reg, svc, params, op)
	return instance, r.finishOperation(op, owns, listener, svc, instance, err)
}

func (r *Resolver) finishOperation(op *core.Operation, owns bool, listener core.DiagnosticListener, svc core.Service, instance any, err error) error {
	if !owns {
		return err
	}
	enabled := listener != nil && listener.IsEnabled()
	if enabled {
		eventKey := core.EventOperationSuccess
		if err != nil {
			eventKey = core.EventOperationFailure
		}
		listener.Write(eventKey, core.OperationEvent{OperationID: op.ID, EntryScope: op.EntryScope.ID(), Service: svc, Err: err})
	}
	return err
}

// ResolveRegistration runs a specific registration's pipeline directly,
// used by the decoration middleware to invoke a decorator registration
// without going through ordinary service lookup. decoratorTarget, if
// non-nil, is threaded through as the instance being decorated.
func (r *Resolver) ResolveRegistration(scope *Scope, reg *core.Registration, decoratorTarget any, op *core.Operation) (any, error) {
	svc := core.NewDecoratorService(svcOf(reg))
	ctx := core.NewRequestContext(op, scope, reg, svc, nil)
	if decoratorTarget != nil {
		ctx.DecoratorTarget = &decoratorTarget
	}
	r.wireContext(ctx, scope, op)

	handler := r.pipelines.registrationPipelineFor(reg)
	if err := handler(ctx); err != nil {
		return nil, err
	}
	return ctx.Instance, nil
}

func svcOf(reg *core.Registration) core.Service {
	if reg.DecoratedService != nil {
		return *reg.DecoratedService
	}
	if len(reg.Services) > 0 {
		return reg.Services[0]
	}
	return core.Service{}
}

func (r *Resolver) resolveRegistration(scope *Scope, reg *core.Registration, svc core.Service, params []core.Parameter, op *core.Operation) (any, error) {
	ctx := core.NewRequestContext(op, scope, reg, svc, params)
	r.wireContext(ctx, scope, op)

	handler := r.pipelines.servicePipelineFor(svc)
	if err := handler(ctx); err != nil {
		return nil, err
	}
	return ctx.Instance, nil
}

func (r *Resolver) wireContext(ctx *core.RequestContext, scope *Scope, op *core.Operation) {
	ctx.Decorators = scope.registry
	ctx.ResolveSub = func(service core.Service, sub core.Scope, params []core.Parameter) (any, error) {
		s, ok := sub.(*Scope)
		if !ok {
			return nil, fmt.Errorf("ioc: sub-resolve requires a scopetree.Scope, got %T", sub)
		}
		return r.Resolve(s, service, params, op)
	}
	ctx.ResolveRegistrationSub = func(reg *core.Registration, sub core.Scope, decoratorTarget any) (any, error) {
		s, ok := sub.(*Scope)
		if !ok {
			return nil, fmt.Errorf("ioc: sub-resolve requires a scopetree.Scope, got %T", sub)
		}
		return r.ResolveRegistration(s, reg, decoratorTarget, op)
	}
}
