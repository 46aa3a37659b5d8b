package core

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{}

func TestServiceEqual(t *testing.T) {
	widgetType := reflect.TypeOf(widget{})
	otherType := reflect.TypeOf(0)

	tests := []struct {
		name  string
		a, b  Service
		equal bool
	}{
		{
			name:  "same typed service",
			a:     NewTypedService(widgetType),
			b:     NewTypedService(widgetType),
			equal: true,
		},
		{
			name:  "different typed services",
			a:     NewTypedService(widgetType),
			b:     NewTypedService(otherType),
			equal: false,
		},
		{
			name:  "keyed services with same key",
			a:     NewKeyedService(widgetType, "primary"),
			b:     NewKeyedService(widgetType, "primary"),
			equal: true,
		},
		{
			name:  "keyed services with different keys",
			a:     NewKeyedService(widgetType, "primary"),
			b:     NewKeyedService(widgetType, "secondary"),
			equal: false,
		},
		{
			name:  "typed and keyed never equal",
			a:     NewTypedService(widgetType),
			b:     NewKeyedService(widgetType, "primary"),
			equal: false,
		},
		{
			name:  "auto-activate flag does not affect equality",
			a:     NewTypedService(widgetType).WithAutoActivate(),
			b:     NewTypedService(widgetType),
			equal: true,
		},
		{
			name:  "scope isolation tag does not affect equality",
			a:     NewTypedService(widgetType).ScopeIsolated("requests"),
			b:     NewTypedService(widgetType),
			equal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}

func TestNewKeyedServiceNilKeyFallsBackToTyped(t *testing.T) {
	widgetType := reflect.TypeOf(widget{})
	svc := NewKeyedService(widgetType, nil)
	require.Equal(t, Typed, svc.Kind())
}

func TestServiceString(t *testing.T) {
	widgetType := reflect.TypeOf(widget{})

	assert.Equal(t, "core.widget", NewTypedService(widgetType).String())
	assert.Equal(t, "core.widget[key=primary]", NewKeyedService(widgetType, "primary").String())
	assert.Equal(t, "decorator(core.widget)", NewDecoratorService(NewTypedService(widgetType)).String())
}

func TestWithAutoActivate(t *testing.T) {
	svc := NewTypedService(reflect.TypeOf(widget{}))
	require.False(t, svc.IsAutoActivate())

	activated := svc.WithAutoActivate()
	assert.True(t, activated.IsAutoActivate())
	assert.False(t, svc.IsAutoActivate(), "WithAutoActivate must not mutate the receiver")
}

func TestScopeIsolated(t *testing.T) {
	svc := NewTypedService(reflect.TypeOf(widget{}))
	_, ok := svc.IsolationTag()
	require.False(t, ok)

	isolated := svc.ScopeIsolated("requests")
	tag, ok := isolated.IsolationTag()
	require.True(t, ok)
	assert.Equal(t, "requests", tag)
}
