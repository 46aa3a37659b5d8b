// Package scopetree implements the lifetime-scope hierarchy from spec
// §4.5: a tree of scopes, each with its own registry view, disposer, and
// single-flight shared-instance cache, plus the resolveComponent
// orchestration that wires a request into the pipeline.
package scopetree

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/corewell/ioc/internal/core"
	"github.com/corewell/ioc/internal/pipeline"
	"github.com/corewell/ioc/internal/registry"
)

const rootTag = "root"

// Scope is the concrete lifetime scope: one node in the tree, implementing
// core.Scope so the pipeline package can drive it without importing this
// package.
type Scope struct {
	id     string
	tag    string
	parent *Scope
	root   *Scope

	registry *registry.Registry

	cacheMu sync.Mutex
	cache   map[uuid.UUID]any

	disposeMu sync.Mutex
	disposed  bool
	disposer  []any // Disposable or AsyncDisposable instances, in activation order

	diagnostics core.DiagnosticListener

	childLifetimeScopeBeginning []func(*Scope)
	currentScopeEnding          []func(*Scope)
	resolveOperationBeginning   []func(*Scope, core.Service)
}

// NewRoot creates the root of a new scope tree with its own registry.
func NewRoot(diagnostics core.DiagnosticListener) *Scope {
	if diagnostics == nil {
		diagnostics = core.NoopListener{}
	}
	s := &Scope{
		id:          uuid.NewString(),
		tag:         rootTag,
		registry:    registry.New(),
		cache:       make(map[uuid.UUID]any),
		diagnostics: diagnostics,
	}
	s.root = s
	return s
}

// Registry exposes the scope's local registry for registration calls made
// before the scope's consumers start resolving from it.
func (s *Scope) Registry() *registry.Registry { return s.registry }

// ID implements core.Scope.
func (s *Scope) ID() string { return s.id }

// Tag implements core.Scope.
func (s *Scope) Tag() string { return s.tag }

// Parent implements core.Scope.
func (s *Scope) Parent() (core.Scope, bool) {
	if s.parent == nil {
		return nil, false
	}
	return s.parent, true
}

// IsRoot implements core.Scope.
func (s *Scope) IsRoot() bool { return s.parent == nil }

// Root implements core.Scope.
func (s *Scope) Root() core.Scope { return s.root }

// FindTag implements core.Scope: walks from s through ancestors, inclusive.
func (s *Scope) FindTag(tag string) (core.Scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.tag == tag {
			return cur, true
		}
	}
	return nil, false
}

// IsDisposed implements core.Scope.
func (s *Scope) IsDisposed() bool {
	s.disposeMu.Lock()
	defer s.disposeMu.Unlock()
	return s.disposed
}

// GetOrCreateSharedInstance implements core.Scope's single-flight shared
// cache (spec §5): one mutex per scope guards the whole cache, held across
// create so concurrent resolves of the same registration in the same
// scope never race.
func (s *Scope) GetOrCreateSharedInstance(regID uuid.UUID, create func() (any, error)) (any, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if instance, ok := s.cache[regID]; ok {
		return instance, nil
	}
	instance, err := create()
	if err != nil {
		return nil, err
	}
	s.cache[regID] = instance
	return instance, nil
}

// TrackDisposable implements core.Scope.
func (s *Scope) TrackDisposable(d any) {
	switch d.(type) {
	case core.Disposable, core.AsyncDisposable:
	default:
		return
	}
	s.disposeMu.Lock()
	defer s.disposeMu.Unlock()
	if s.disposed {
		return
	}
	s.disposer = append(s.disposer, d)
}

// BeginScope creates a child scope. tag, if non-empty, overrides the
// default tag of "" for a plain child scope (spec §4.5: "root default"
// applies only to the actual root; ordinary child scopes are untagged
// unless the caller names one).
func (s *Scope) BeginScope(tag string) *Scope {
	child := &Scope{
		id:          uuid.NewString(),
		tag:         tag,
		parent:      s,
		root:        s.root,
		registry:    registry.NewChild(s.registry),
		cache:       make(map[uuid.UUID]any),
		diagnostics: s.diagnostics,
	}
	for _, fn := range s.childLifetimeScopeBeginning {
		fn(child)
	}
	return child
}

// OnChildLifetimeScopeBeginning registers a callback run against every
// child scope created directly from s, before the caller gets it back
// (spec §4.5 event list).
func (s *Scope) OnChildLifetimeScopeBeginning(fn func(*Scope)) {
	s.childLifetimeScopeBeginning = append(s.childLifetimeScopeBeginning, fn)
}

// OnCurrentScopeEnding registers a callback run when s itself is disposed,
// before its disposer runs (spec §4.5 event list).
func (s *Scope) OnCurrentScopeEnding(fn func(*Scope)) {
	s.currentScopeEnding = append(s.currentScopeEnding, fn)
}

// OnResolveOperationBeginning registers a callback run whenever a new
// resolve operation begins at s — that is, whenever a Resolve call on s
// itself (not a recursive sub-resolve within an already-running operation)
// starts (spec §4.5/§6 event list).
func (s *Scope) OnResolveOperationBeginning(fn func(*Scope, core.Service)) {
	s.resolveOperationBeginning = append(s.resolveOperationBeginning, fn)
}

func (s *Scope) fireResolveOperationBeginning(svc core.Service) {
	for _, fn := range s.resolveOperationBeginning {
		fn(s, svc)
	}
}

// Dispose seals the scope and runs its disposer in reverse activation
// order, synchronously. Disposal is idempotent (spec §4.5).
func (s *Scope) Dispose() error {
	s.disposeMu.Lock()
	if s.disposed {
		s.disposeMu.Unlock()
		return nil
	}
	s.disposed = true
	toDispose := s.disposer
	s.disposer = nil
	s.disposeMu.Unlock()

	for _, fn := range s.currentScopeEnding {
		fn(s)
	}
	s.registry.Seal()

	var firstErr error
	for i := len(toDispose) - 1; i >= 0; i-- {
		if d, ok := toDispose[i].(core.Disposable); ok {
			if err := d.Dispose(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// DisposeAsync seals the scope and runs its disposer in reverse activation
// order, preferring AsyncDisposable over Disposable for instances that
// implement both (spec §4.5).
func (s *Scope) DisposeAsync(ctx context.Context) error {
	s.disposeMu.Lock()
	if s.disposed {
		s.disposeMu.Unlock()
		return nil
	}
	s.disposed = true
	toDispose := s.disposer
	s.disposer = nil
	s.disposeMu.Unlock()

	for _, fn := range s.currentScopeEnding {
		fn(s)
	}
	s.registry.Seal()

	var firstErr error
	for i := len(toDispose) - 1; i >= 0; i-- {
		instance := toDispose[i]
		if ad, ok := instance.(core.AsyncDisposable); ok {
			if err := ad.DisposeAsync(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		if d, ok := instance.(core.Disposable); ok {
			if err := d.Dispose(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

var (
	_ core.Scope = (*Scope)(nil)
)
