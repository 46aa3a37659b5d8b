package scopetree

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewell/ioc/internal/core"
)

type widget struct{ n int }

func widgetService() core.Service { return core.NewTypedService(reflect.TypeOf(widget{})) }

func widgetRegistration(activations *int, sharing core.Sharing) *core.Registration {
	activator := func(*core.RequestContext, []core.Parameter) (any, error) {
		if activations != nil {
			*activations++
		}
		return widget{n: 1}, nil
	}
	return core.NewRegistration(activator, []core.Service{widgetService()}, core.CurrentScope(), sharing, core.OwnedByLifetimeScope)
}

func TestResolveActivatesRegisteredService(t *testing.T) {
	root := NewRoot(nil)
	require.NoError(t, root.Registry().Register(widgetRegistration(nil, core.NotShared), false))
	root.Registry().Seal()

	resolver := NewResolver()
	instance, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, widget{n: 1}, instance)
}

func TestResolveUnregisteredServiceFails(t *testing.T) {
	root := NewRoot(nil)
	root.Registry().Seal()

	resolver := NewResolver()
	_, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsComponentNotRegistered(err))
}

func TestSharedRegistrationActivatesOnce(t *testing.T) {
	root := NewRoot(nil)
	activations := 0
	require.NoError(t, root.Registry().Register(widgetRegistration(&activations, core.Shared), false))
	root.Registry().Seal()

	resolver := NewResolver()
	_, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)
	_, err = resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, activations)
}

func TestNotSharedRegistrationActivatesEveryTime(t *testing.T) {
	root := NewRoot(nil)
	activations := 0
	require.NoError(t, root.Registry().Register(widgetRegistration(&activations, core.NotShared), false))
	root.Registry().Seal()

	resolver := NewResolver()
	_, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)
	_, err = resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, activations)
}

func TestRootScopeLifetimeSharesThroughRootEvenWhenResolvedFromChild(t *testing.T) {
	root := NewRoot(nil)
	activations := 0
	activator := func(*core.RequestContext, []core.Parameter) (any, error) { activations++; return widget{n: activations}, nil }
	reg := core.NewRegistration(activator, []core.Service{widgetService()}, core.RootScope(), core.Shared, core.OwnedByLifetimeScope)
	require.NoError(t, root.Registry().Register(reg, false))
	root.Registry().Seal()

	resolver := NewResolver()
	child := root.BeginScope("")

	v1, err := resolver.Resolve(child, widgetService(), nil, nil)
	require.NoError(t, err)
	v2, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, activations)
}

func TestMatchingScopeLifetimeFailsWithoutAnAncestorTag(t *testing.T) {
	root := NewRoot(nil)
	reg := core.NewRegistration(func(*core.RequestContext, []core.Parameter) (any, error) { return widget{}, nil },
		[]core.Service{widgetService()}, core.MatchingScope("tenant"), core.Shared, core.OwnedByLifetimeScope)
	require.NoError(t, root.Registry().Register(reg, false))
	root.Registry().Seal()

	resolver := NewResolver()
	_, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.Error(t, err)

	var target *core.NoMatchingScopeError
	require.ErrorAs(t, err, &target)
}

func TestCircularDependencyIsDetected(t *testing.T) {
	root := NewRoot(nil)
	resolver := NewResolver()

	svc := widgetService()
	var activator core.Activator
	activator = func(ctx *core.RequestContext, _ []core.Parameter) (any, error) {
		return ctx.ResolveSub(svc, ctx.ActivationScope, nil)
	}
	reg := core.NewRegistration(activator, []core.Service{svc}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	require.NoError(t, root.Registry().Register(reg, false))
	root.Registry().Seal()

	_, err := resolver.Resolve(root, svc, nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsCircularDependency(err))
}

func TestDisposerOnlyTracksScopeOwnedInstances(t *testing.T) {
	root := NewRoot(nil)
	resolver := NewResolver()

	var disposed bool
	activator := func(*core.RequestContext, []core.Parameter) (any, error) {
		return disposableWidget{onDispose: func() { disposed = true }}, nil
	}
	reg := core.NewRegistration(activator, []core.Service{widgetService()}, core.CurrentScope(), core.NotShared, core.OwnedByLifetimeScope)
	require.NoError(t, root.Registry().Register(reg, false))
	root.Registry().Seal()

	_, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, root.Dispose())
	assert.True(t, disposed)
}

func TestExternallyOwnedInstancesAreNotDisposed(t *testing.T) {
	root := NewRoot(nil)
	resolver := NewResolver()

	var disposed bool
	activator := func(*core.RequestContext, []core.Parameter) (any, error) {
		return disposableWidget{onDispose: func() { disposed = true }}, nil
	}
	reg := core.NewRegistration(activator, []core.Service{widgetService()}, core.CurrentScope(), core.NotShared, core.ExternallyOwned)
	require.NoError(t, root.Registry().Register(reg, false))
	root.Registry().Seal()

	_, err := resolver.Resolve(root, widgetService(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, root.Dispose())
	assert.False(t, disposed)
}

type disposableWidget struct {
	onDispose func()
}

func (d disposableWidget) Dispose() error {
	d.onDispose()
	return nil
}
