package ioc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ioc "github.com/corewell/ioc"
)

func TestKeyedResolveDistinguishesSameTypeDifferentKeys(t *testing.T) {
	b := ioc.NewBuilder()
	primary := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "primary", nil
	}, []ioc.Service{ioc.KeyedServiceFor[string]("primary")})
	secondary := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "secondary", nil
	}, []ioc.Service{ioc.KeyedServiceFor[string]("secondary")})
	require.NoError(t, b.Register(primary))
	require.NoError(t, b.Register(secondary))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v1, err := c.Resolve(ioc.KeyedServiceFor[string]("primary"))
	require.NoError(t, err)
	v2, err := c.Resolve(ioc.KeyedServiceFor[string]("secondary"))
	require.NoError(t, err)

	assert.Equal(t, "primary", v1)
	assert.Equal(t, "secondary", v2)

	_, ok, err := c.TryResolve(ioc.KeyedServiceFor[string]("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMetaSourcePairsValueWithRegistrationMetadata(t *testing.T) {
	b := ioc.NewBuilder()
	reg := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return 7, nil
	}, []ioc.Service{ioc.ServiceFor[int]()}, ioc.WithMetadata("unit", "widgets"))
	require.NoError(t, b.Register(reg))
	require.NoError(t, b.AddRegistrationSource(ioc.NewMetaSource[int]()))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.ServiceFor[ioc.Meta[int]]())
	require.NoError(t, err)

	meta := v.(ioc.Meta[int])
	assert.Equal(t, 7, meta.Value)
	assert.Equal(t, "widgets", meta.Metadata["unit"])
}

type ownedThing struct{ disposed *bool }

func (o ownedThing) Dispose() error {
	*o.disposed = true
	return nil
}

func TestOwnedSourceGivesCallerDisposalResponsibility(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	reg := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return ownedThing{disposed: &disposed}, nil
	}, []ioc.Service{ioc.ServiceFor[ownedThing]()}, ioc.WithOwnership(ioc.ExternallyOwned))
	require.NoError(t, b.Register(reg))
	require.NoError(t, b.AddRegistrationSource(ioc.NewOwnedSource[ownedThing]()))

	c, err := b.Build()
	require.NoError(t, err)

	v, err := c.Resolve(ioc.ServiceFor[*ioc.Owned[ownedThing]]())
	require.NoError(t, err)
	owned := v.(*ioc.Owned[ownedThing])

	require.NoError(t, c.Dispose())
	assert.False(t, disposed, "an externally-owned instance must not be disposed by the scope")

	require.NoError(t, owned.Release())
	assert.True(t, disposed)

	disposed = false
	require.NoError(t, owned.Release())
	assert.False(t, disposed, "Release must be a no-op after the first call")
}

func TestFuncSourceReResolvesOnEveryCall(t *testing.T) {
	b := ioc.NewBuilder()
	activations := 0
	reg := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		activations++
		return activations, nil
	}, []ioc.Service{ioc.ServiceFor[int]()})
	require.NoError(t, b.Register(reg))
	require.NoError(t, b.AddRegistrationSource(ioc.NewFuncSource[int]()))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.ServiceFor[ioc.Func[int]]())
	require.NoError(t, err)
	factory := v.(ioc.Func[int])

	first, err := factory()
	require.NoError(t, err)
	second, err := factory()
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestFuncWithParamSourcePassesParamThroughToActivator(t *testing.T) {
	b := ioc.NewBuilder()
	reg := ioc.NewRegistration(func(ctx *ioc.RequestContext, params []ioc.Parameter) (any, error) {
		for _, p := range params {
			if tp, ok := p.(ioc.TypedParameter); ok {
				if n, ok := tp.Value.(int); ok {
					return n * 10, nil
				}
			}
		}
		return 0, nil
	}, []ioc.Service{ioc.ServiceFor[int]()})
	require.NoError(t, b.Register(reg))
	require.NoError(t, b.AddRegistrationSource(ioc.NewFuncWithParamSource[int, int]()))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.ServiceFor[ioc.FuncWithParam[int, int]]())
	require.NoError(t, err)
	factory := v.(ioc.FuncWithParam[int, int])

	result, err := factory(4)
	require.NoError(t, err)
	assert.Equal(t, 40, result)
}

func TestCollectionSourceEnumeratesAllNonExcludedRegistrations(t *testing.T) {
	b := ioc.NewBuilder()
	first := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "a", nil
	}, []ioc.Service{ioc.ServiceFor[string]()})
	second := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "b", nil
	}, []ioc.Service{ioc.ServiceFor[string]()})
	excluded := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "c", nil
	}, []ioc.Service{ioc.ServiceFor[string]()}, ioc.ExcludeFromCollections())

	require.NoError(t, b.Register(first, ioc.PreserveDefaults()))
	require.NoError(t, b.Register(second, ioc.PreserveDefaults()))
	require.NoError(t, b.Register(excluded, ioc.PreserveDefaults()))
	require.NoError(t, b.AddRegistrationSource(ioc.NewCollectionSource[string]()))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.ServiceFor[[]string]())
	require.NoError(t, err)

	values := v.([]string)
	assert.ElementsMatch(t, []string{"a", "b"}, values)
	assert.NotContains(t, values, "c")
}

func TestKeyedIndexSourceResolvesEachConfiguredKey(t *testing.T) {
	b := ioc.NewBuilder()
	regRed := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "red-value", nil
	}, []ioc.Service{ioc.KeyedServiceFor[string]("red")})
	regBlue := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return "blue-value", nil
	}, []ioc.Service{ioc.KeyedServiceFor[string]("blue")})
	require.NoError(t, b.Register(regRed))
	require.NoError(t, b.Register(regBlue))
	require.NoError(t, b.AddRegistrationSource(ioc.NewKeyedIndexSource[string, string]("red", "blue")))

	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose()

	v, err := c.Resolve(ioc.ServiceFor[ioc.KeyedIndex[string, string]]())
	require.NoError(t, err)

	idx := v.(ioc.KeyedIndex[string, string])
	red, ok := idx.Get("red")
	require.True(t, ok)
	assert.Equal(t, "red-value", red)

	blue, ok := idx.Get("blue")
	require.True(t, ok)
	assert.Equal(t, "blue-value", blue)

	assert.ElementsMatch(t, []string{"red", "blue"}, idx.Keys())
}

type asyncOnlyThing struct{ disposed *bool }

func (a asyncOnlyThing) DisposeAsync(context.Context) error {
	*a.disposed = true
	return nil
}

func TestDisposeAsyncDisposesAsyncOnlyInstance(t *testing.T) {
	b := ioc.NewBuilder()
	disposed := false
	reg := ioc.NewRegistration(func(*ioc.RequestContext, []ioc.Parameter) (any, error) {
		return asyncOnlyThing{disposed: &disposed}, nil
	}, []ioc.Service{ioc.ServiceFor[asyncOnlyThing]()})
	require.NoError(t, b.Register(reg))

	c, err := b.Build()
	require.NoError(t, err)

	_, err = c.Resolve(ioc.ServiceFor[asyncOnlyThing]())
	require.NoError(t, err)

	require.NoError(t, c.DisposeAsync(context.Background()))
	assert.True(t, disposed)
	assert.True(t, c.IsDisposed())
}
