package ioc_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ioc "github.com/corewell/ioc"
)

type greeter struct{ name string }

type greeterHandle struct {
	greeter
	disposed *bool
}

func (g *greeterHandle) Dispose() error {
	*g.disposed = true
	return nil
}

func greeterService() ioc.Service { return ioc.ServiceFor[*greeterHandle]() }

func registerGreeter(t *testing.T, b *ioc.Builder, disposed *bool, opts ...ioc.RegistrationOption) {
	t.Helper()
	activator := func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return &greeterHandle{greeter: greeter{name: "hello"}, disposed: disposed}, nil
	}
	reg := ioc.NewRegistration(activator, []ioc.Service{greeterService()}, opts...)
	require.NoError(t, b.Register(reg))
}

func TestResolveActivatesRegisteredService(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	registerGreeter(t, b, &disposed)

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(greeterService())
	require.NoError(t, err)
	g := v.(*greeterHandle)
	assert.Equal(t, "hello", g.name)
}

func TestTryResolveSwallowsOnlyComponentNotRegistered(t *testing.T) {
	b := ioc.NewBuilder()
	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	_, ok, err := c.TryResolve(greeterService())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSharedServiceCachesWithinOwningScope(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	registerGreeter(t, b, &disposed, ioc.WithSharing(ioc.Shared))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v1, err := c.Resolve(greeterService())
	require.NoError(t, err)
	v2, err := c.Resolve(greeterService())
	require.NoError(t, err)
	assert.Same(t, v1, v2)
}

func TestScopedSharingIsolatesInstancesPerChildScope(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	registerGreeter(t, b, &disposed, ioc.WithSharing(ioc.Shared), ioc.WithLifetime(ioc.CurrentScope()))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	child1 := c.BeginScope()
	child2 := c.BeginScope()
	defer child1.Dispose()
	defer child2.Dispose()

	v1, err := child1.Resolve(greeterService())
	require.NoError(t, err)
	v2, err := child2.Resolve(greeterService())
	require.NoError(t, err)

	assert.NotSame(t, v1, v2, "CurrentScope sharing must not leak an instance across sibling scopes")
}

func TestDisposeReleasesOwnedInstances(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	registerGreeter(t, b, &disposed)

	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve(greeterService())
	require.NoError(t, err)

	require.NoError(t, c.Dispose())
	assert.True(t, disposed)
}

func TestMatchingScopeTagResolvesToNamedAncestor(t *testing.T) {
	b := ioc.NewBuilder()
	activations := 0
	activator := func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		activations++
		return &greeterHandle{greeter: greeter{name: "tenant"}, disposed: new(bool)}, nil
	}
	reg := ioc.NewRegistration(activator, []ioc.Service{greeterService()}, ioc.WithLifetime(ioc.MatchingScope("tenant")), ioc.WithSharing(ioc.Shared))
	require.NoError(t, b.Register(reg))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	tenantScope := c.BeginScope("tenant")
	request1 := tenantScope.BeginScope("")
	request2 := tenantScope.BeginScope("")

	v1, err := request1.Resolve(greeterService())
	require.NoError(t, err)
	v2, err := request2.Resolve(greeterService())
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, 1, activations)
}

func TestDecoratorsApplyMostRecentlyRegisteredOutermost(t *testing.T) {
	b := ioc.NewBuilder()
	base := func(*ioc.RequestContext, []ioc.Parameter) (any, error) { return "base", nil }
	reg := ioc.NewRegistration(base, []ioc.Service{ioc.ServiceFor[string]()})
	require.NoError(t, b.Register(reg))

	wrapOuter := ioc.NewDecorator(ioc.ServiceFor[string](), func(instance any, _ []ioc.Parameter) (any, error) {
		return instance.(string) + "+outer", nil
	})
	wrapInner := ioc.NewDecorator(ioc.ServiceFor[string](), func(instance any, _ []ioc.Parameter) (any, error) {
		return instance.(string) + "+inner", nil
	})
	require.NoError(t, b.Register(wrapInner))
	require.NoError(t, b.Register(wrapOuter))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.ServiceFor[string]())
	require.NoError(t, err)
	assert.Equal(t, "base+inner+outer", v)
}

func TestAutoActivateRunsAtBuildTime(t *testing.T) {
	b := ioc.NewBuilder()
	activated := false
	activator := func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		activated = true
		return "eager", nil
	}
	reg := ioc.NewRegistration(activator, []ioc.Service{ioc.ServiceFor[string]()}, ioc.AutoActivate(0))
	require.NoError(t, b.Register(reg))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	assert.True(t, activated)
}

func TestCircularDependencyReturnsTypedError(t *testing.T) {
	b := ioc.NewBuilder()
	svc := ioc.ServiceFor[string]()
	activator := func(ctx *ioc.RequestContext, _ []ioc.Parameter) (any, error) {
		v, err := ctx.ResolveSub(svc, ctx.ActivationScope, nil)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	reg := ioc.NewRegistration(activator, []ioc.Service{svc})
	require.NoError(t, b.Register(reg))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	_, err = c.Resolve(svc)
	require.Error(t, err)
	assert.True(t, ioc.IsCircularDependency(err))
}

func TestLazySourceDefersActivation(t *testing.T) {
	b := ioc.NewBuilder()
	activated := false
	activator := func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		activated = true
		return 42, nil
	}
	require.NoError(t, b.Register(ioc.NewRegistration(activator, []ioc.Service{ioc.ServiceFor[int]()})))
	require.NoError(t, b.AddRegistrationSource(ioc.NewLazySource[int]()))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.TypedService(reflect.TypeOf(ioc.Lazy[int]{})))
	require.NoError(t, err)
	require.False(t, activated)

	lazy := v.(ioc.Lazy[int])
	value, err := lazy.Value()
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.True(t, activated)
}

func TestOnResolveOperationBeginningFiresForEachTopLevelResolve(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	registerGreeter(t, b, &disposed)

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	var seen []ioc.Service
	c.OnResolveOperationBeginning(func(_ *ioc.Scope, svc ioc.Service) {
		seen = append(seen, svc)
	})

	_, err = c.Resolve(greeterService())
	require.NoError(t, err)
	_, err = c.Resolve(greeterService())
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Equal(greeterService()))
}
