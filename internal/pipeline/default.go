package pipeline

import (
	"github.com/corewell/ioc/internal/core"
)

// BuildServiceDefaults returns the default service-pipeline middleware, in
// order: request-lifetime-start, scope-selection, decorator engine, then
// sharing-lookup. There is no separate service-pipeline-end item: the
// terminal passed to Builder.Build hands off to the registration pipeline.
func BuildServiceDefaults() []Item {
	return []Item{
		{Phase: core.ResolveRequestStart, Mode: core.EndOfPhase, Name: "request-lifetime-start", Mw: requestLifetimeStart},
		{Phase: core.ScopeSelection, Mode: core.EndOfPhase, Name: "scope-selection", Mw: scopeSelection},
		{Phase: core.Decoration, Mode: core.EndOfPhase, Name: "decorator-engine", Mw: decoratorEngine},
		{Phase: core.SharingPreparation, Mode: core.EndOfPhase, Name: "sharing-lookup", Mw: sharingLookup},
	}
}

// BuildRegistrationDefaults returns the default registration-pipeline
// middleware, per spec §4.3: circular-dependency-check,
// parameter-rewriting, disposer-tracking, then activator-call.
func BuildRegistrationDefaults() []Item {
	return []Item{
		{Phase: core.RegistrationPipelineStart, Mode: core.EndOfPhase, Name: "circular-dependency-check", Mw: circularDependencyCheck},
		{Phase: core.ParameterSelection, Mode: core.EndOfPhase, Name: "parameter-rewriting", Mw: parameterRewriting},
		{Phase: core.Activation, Mode: core.EndOfPhase, Name: "disposer-tracking", Mw: disposerTracking},
		{Phase: core.Activation, Mode: core.EndOfPhase, Name: "activator-call", Mw: activatorCall},
	}
}

// requestLifetimeStart emits the requestStart/Success/Failure diagnostic
// events bracketing the whole service pipeline (spec §4.3/§6).
func requestLifetimeStart(ctx *core.RequestContext, next Handler) error {
	listener := ctx.Operation.Diagnostics
	enabled := listener != nil && listener.IsEnabled()
	if enabled {
		listener.Write(core.EventRequestStart, core.RequestEvent{
			OperationID: ctx.Operation.ID, Service: ctx.Service,
		})
	}

	err := next(ctx)

	if enabled {
		eventKey := core.EventRequestSuccess
		if err != nil {
			eventKey = core.EventRequestFailure
		}
		listener.Write(eventKey, core.RequestEvent{
			OperationID: ctx.Operation.ID, Service: ctx.Service, Registration: ctx.Registration, Err: err,
		})
	}
	return err
}

// scopeSelection resolves ctx.Registration.Lifetime into the concrete
// scope that will own (and potentially cache) the activated instance,
// walking to the root or to the nearest ancestor tagged Lifetime.Tag as
// needed (spec §4.5).
func scopeSelection(ctx *core.RequestContext, next Handler) error {
	switch ctx.Registration.Lifetime.Kind {
	case core.RootScopeLifetime:
		ctx.ChangeScope(ctx.ActivationScope.Root())
	case core.MatchingScopeLifetime:
		tag := ctx.Registration.Lifetime.Tag
		scope, ok := ctx.ActivationScope.FindTag(tag)
		if !ok {
			return &core.NoMatchingScopeError{Tag: tag}
		}
		ctx.ChangeScope(scope)
	case core.CurrentScopeLifetime:
		// ctx.ActivationScope is already the scope that issued the
		// resolve; nothing to do.
	}
	return next(ctx)
}

// decoratorEngine applies every decorator registered for ctx.Service, most
// recently registered wrapping outermost, around the instance the
// downstream pipeline produces (spec §4.3's decorator engine, composed
// with the phase ordering described in §4.2).
func decoratorEngine(ctx *core.RequestContext, next Handler) error {
	if err := next(ctx); err != nil {
		return err
	}
	if ctx.Decorators == nil || ctx.Service.Kind() == core.Decorator {
		return nil
	}

	decorators, err := ctx.Decorators.DecoratorsFor(ctx.Service)
	if err != nil {
		return err
	}
	if len(decorators) == 0 {
		return nil
	}

	// Most-recently-registered decorator wraps outermost: apply in
	// registration order so the last one registered runs last (and
	// therefore sees, and wraps, every earlier decorator's result).
	instance := ctx.Instance
	for _, d := range decorators {
		decorated, err := ctx.ResolveRegistrationSub(d, ctx.ActivationScope, instance)
		if err != nil {
			return err
		}
		instance = decorated
	}
	ctx.Instance = instance
	return nil
}

// sharingLookup implements the single-flight shared-instance cache (spec
// §4.3/§5): for a Shared registration, it locks the activation scope's
// cache and either returns the cached instance or runs the remainder of
// the pipeline once, under the lock, to produce and cache it.
func sharingLookup(ctx *core.RequestContext, next Handler) error {
	if ctx.Registration.Sharing != core.Shared {
		return next(ctx)
	}

	instance, err := ctx.ActivationScope.GetOrCreateSharedInstance(ctx.Registration.ID, func() (any, error) {
		if err := next(ctx); err != nil {
			return nil, err
		}
		return ctx.Instance, nil
	})
	if err != nil {
		return err
	}
	ctx.Instance = instance
	return nil
}

// circularDependencyCheck pushes (scope, registration) onto the
// operation's in-flight stack before activation and pops it after, even
// on failure (spec §4.4/§4.5).
func circularDependencyCheck(ctx *core.RequestContext, next Handler) error {
	leave, err := ctx.Operation.Enter(ctx.ActivationScope, ctx.Registration, ctx.Service)
	if err != nil {
		return err
	}
	defer leave()
	return next(ctx)
}

// parameterRewriting occupies the ParameterSelection phase of the default
// chain and leaves ctx.Parameters untouched; registration middleware added
// with WithRegistrationMiddleware at that phase can rewrite them.
func parameterRewriting(ctx *core.RequestContext, next Handler) error {
	return next(ctx)
}

// disposerTracking registers a newly activated instance with its
// activation scope's disposer when the registration is owned by the
// scope, so it is released in reverse order on scope disposal (spec
// §4.5).
func disposerTracking(ctx *core.RequestContext, next Handler) error {
	if err := next(ctx); err != nil {
		return err
	}
	if ctx.NewInstanceActivated && ctx.Registration.Ownership == core.OwnedByLifetimeScope {
		ctx.ActivationScope.TrackDisposable(ctx.Instance)
	}
	return nil
}

// activatorCall is the terminal middleware of the registration pipeline:
// it invokes the registration's opaque Activator with the current
// parameters and records the produced instance (spec §4.1/§6).
func activatorCall(ctx *core.RequestContext, next Handler) error {
	instance, err := ctx.Registration.Activator(ctx, ctx.Parameters)
	if err != nil {
		return &core.DependencyResolutionError{Chain: []core.Service{ctx.Service}, Cause: err}
	}
	ctx.Instance = instance
	ctx.NewInstanceActivated = true
	return next(ctx)
}
