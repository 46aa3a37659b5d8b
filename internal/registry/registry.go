// Package registry holds the per-scope component registry from spec §4.1:
// ordered registration buckets per service, lazy registration-source
// draining, and default-registration selection.
package registry

import (
	"fmt"
	"sync"

	"github.com/corewell/ioc/internal/core"
)

type sourceState int

const (
	uninitialized sourceState = iota
	initializing
	initialized
)

// ServiceRegistrationInfo tracks every registration known for one service,
// grouped into the three ordered buckets spec §4.1 describes, plus the
// fixed-registration override and the lazily-drained source queue.
type ServiceRegistrationInfo struct {
	service core.Service

	// defaults holds directly-registered, non-fixed registrations, in
	// registration order. The last one registered is the default default.
	defaults []*core.Registration
	// sourceOriginated holds registrations synthesized by registration
	// sources, in the order their sources were drained.
	sourceOriginated []*core.Registration
	// preserveDefaults holds registrations explicitly registered with
	// preserveDefaults=true: they never outrank an existing default, but
	// still outrank source-originated registrations.
	preserveDefaults []*core.Registration

	fixed *core.Registration

	sourceQueue []core.RegistrationSource
	state       sourceState
}

func newServiceRegistrationInfo(service core.Service) *ServiceRegistrationInfo {
	return &ServiceRegistrationInfo{service: service}
}

// all returns every registration known for the service, in the
// enumeration order spec §4.1 names: fixed first (if present), then
// defaults, then source-originated, then preserve-defaults.
func (info *ServiceRegistrationInfo) all() []*core.Registration {
	out := make([]*core.Registration, 0, len(info.defaults)+len(info.sourceOriginated)+len(info.preserveDefaults)+1)
	if info.fixed != nil {
		out = append(out, info.fixed)
	}
	out = append(out, info.defaults...)
	out = append(out, info.sourceOriginated...)
	out = append(out, info.preserveDefaults...)
	return out
}

// defaultRegistration picks the one registration spec §4.1 calls "the"
// default for a service: fixed overrides everything; otherwise the most
// recently added direct default; otherwise the first source-originated
// registration; otherwise the first preserve-default.
func (info *ServiceRegistrationInfo) defaultRegistration() (*core.Registration, bool) {
	if info.fixed != nil {
		return info.fixed, true
	}
	if n := len(info.defaults); n > 0 {
		return info.defaults[n-1], true
	}
	if len(info.sourceOriginated) > 0 {
		return info.sourceOriginated[0], true
	}
	if len(info.preserveDefaults) > 0 {
		return info.preserveDefaults[0], true
	}
	return nil, false
}

// Registry is a component registry for one lifetime scope. Sub-scopes get
// their own Registry, delegating lookups to the parent's for services they
// have no local registration or source for (spec §4.1's "a sub-scope's
// registry delegates to its parent, with local registrations taking
// precedence").
type Registry struct {
	mu sync.Mutex

	parent *Registry

	infos      map[serviceKey]*ServiceRegistrationInfo
	byID       map[string]*core.Registration
	sources    []core.RegistrationSource
	decorators map[serviceKey][]*core.Registration

	built bool

	initializationDepth int

	onRegistered              func(*core.Registration)
	onRegistrationSourceAdded func(core.RegistrationSource)
}

// serviceKey is a normalized projection of core.Service used as a map
// key: it strips the auto-activate and scope-isolation fields that
// core.Service carries but that Service.Equal (and therefore registry
// lookup) ignores. Keys supplied to NewKeyedService are expected to be
// comparable, as with any map-keyed DI container.
type serviceKey struct {
	kind Kind
	typ  string
	key  any
}

type Kind = core.Kind

func toServiceKey(s core.Service) serviceKey {
	k := serviceKey{kind: s.Kind(), key: s.Key()}
	if s.Type() != nil {
		k.typ = s.Type().String()
	}
	return k
}

// New creates a root registry with no parent.
func New() *Registry {
	return &Registry{
		infos:      make(map[serviceKey]*ServiceRegistrationInfo),
		byID:       make(map[string]*core.Registration),
		decorators: make(map[serviceKey][]*core.Registration),
	}
}

// NewChild creates a registry delegating to parent for services it has no
// local entry for (spec §4.1).
func NewChild(parent *Registry) *Registry {
	r := New()
	r.parent = parent
	return r
}

// OnRegistered sets the callback invoked synchronously whenever Register
// successfully adds a registration (spec §4.1's Registered event).
func (r *Registry) OnRegistered(fn func(*core.Registration)) { r.onRegistered = fn }

// OnRegistrationSourceAdded sets the callback invoked when
// AddRegistrationSource succeeds (spec §4.1's RegistrationSourceAdded
// event).
func (r *Registry) OnRegistrationSourceAdded(fn func(core.RegistrationSource)) {
	r.onRegistrationSourceAdded = fn
}

// Seal freezes the registry: future Register/AddRegistrationSource calls
// fail with InvalidRegistrationStateError. A scope's own (local) registry
// is sealed once its scope finishes constructing; resolve-time source
// draining is exempt since it uses a separate, always-open path.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built = true
}

// Register adds reg as a default registration for every service it
// provides. When preserveDefaults is true, reg is added to the
// preserve-defaults bucket instead of the defaults bucket, so it never
// outranks a directly-registered default (spec §4.1).
func (r *Registry) Register(reg *core.Registration, preserveDefaults bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return &core.InvalidRegistrationStateError{Reason: "registry has been built"}
	}

	for _, svc := range reg.Services {
		if reg.IsDecoratorReg && reg.DecoratedService != nil && svc.Equal(*reg.DecoratedService) {
			continue
		}
		info := r.infoFor(svc)
		if reg.Options.Has(core.Fixed) {
			info.fixed = reg
		} else if preserveDefaults {
			info.preserveDefaults = append(info.preserveDefaults, reg)
		} else {
			info.defaults = append(info.defaults, reg)
		}
	}

	if reg.IsDecoratorReg && reg.DecoratedService != nil {
		key := toServiceKey(*reg.DecoratedService)
		r.decorators[key] = append(r.decorators[key], reg)
	}

	r.byID[reg.ID.String()] = reg

	if r.onRegistered != nil {
		r.onRegistered(reg)
	}
	return nil
}

// AddRegistrationSource registers src to be consulted, lazily, the first
// time a service it might provide is looked up (spec §4.1).
func (r *Registry) AddRegistrationSource(src core.RegistrationSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return &core.InvalidRegistrationStateError{Reason: "registry has been built"}
	}
	r.sources = append(r.sources, src)
	if r.onRegistrationSourceAdded != nil {
		r.onRegistrationSourceAdded(src)
	}
	return nil
}

func (r *Registry) infoFor(svc core.Service) *ServiceRegistrationInfo {
	key := toServiceKey(svc)
	info, ok := r.infos[key]
	if !ok {
		info = newServiceRegistrationInfo(svc)
		r.infos[key] = info
	}
	return info
}

// TryGetServiceRegistration returns the default registration for svc,
// draining applicable registration sources first if none has run yet.
// Re-entrant calls made while a source is draining (initializationDepth >
// 0) see only what has been contributed so far, matching spec §4.1's
// re-entrancy note for sources that call accessor(otherService) during
// their own synthesis.
func (r *Registry) TryGetServiceRegistration(svc core.Service) (*core.Registration, bool, error) {
	regs, err := r.ServicesFor(svc)
	if err != nil {
		return nil, false, err
	}
	info := r.lookupInfo(svc)
	if info != nil {
		if reg, ok := info.defaultRegistration(); ok {
			return reg, true, nil
		}
	}
	if len(regs) > 0 {
		return regs[0], true, nil
	}
	return nil, false, nil
}

// lookupInfo returns the nearest info for svc, local first, that has a
// default registration; an empty local info defers to the parent's.
func (r *Registry) lookupInfo(svc core.Service) *ServiceRegistrationInfo {
	if info, ok := r.infos[toServiceKey(svc)]; ok {
		if _, has := info.defaultRegistration(); has {
			return info
		}
	}
	if r.parent != nil {
		return r.parent.lookupInfo(svc)
	}
	return nil
}

// ServicesFor returns every registration (local and inherited) that
// provides svc, in spec §4.1's enumeration order, draining this
// registry's and its ancestors' registration sources on first lookup.
func (r *Registry) ServicesFor(svc core.Service) ([]*core.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.servicesForLocked(svc)
}

func (r *Registry) servicesForLocked(svc core.Service) ([]*core.Registration, error) {
	key := toServiceKey(svc)
	info, ok := r.infos[key]
	if !ok {
		info = newServiceRegistrationInfo(svc)
		r.infos[key] = info
	}

	if err := r.drainSources(info, svc); err != nil {
		return nil, err
	}

	local := info.all()

	if r.parent == nil {
		return local, nil
	}

	parentRegs, err := r.parent.servicesForLocked(svc)
	if err != nil {
		return nil, err
	}
	// Local registrations take precedence: they are enumerated first.
	return append(append([]*core.Registration{}, local...), parentRegs...), nil
}

func (r *Registry) drainSources(info *ServiceRegistrationInfo, svc core.Service) error {
	if info.state == initialized || info.state == initializing || len(r.sources) == 0 {
		return nil
	}

	info.state = initializing
	r.initializationDepth++
	defer func() {
		r.initializationDepth--
		info.state = initialized
	}()

	accessor := func(other core.Service) ([]*core.Registration, error) {
		return r.servicesForLocked(other)
	}

	for _, src := range r.sources {
		regs, err := src.RegistrationsFor(svc, accessor)
		if err != nil {
			return fmt.Errorf("ioc: registration source failed for %s: %w", svc, err)
		}
		for _, reg := range regs {
			info.sourceOriginated = append(info.sourceOriginated, reg)
			r.byID[reg.ID.String()] = reg
			if r.onRegistered != nil {
				r.onRegistered(reg)
			}
		}
	}
	return nil
}

// DecoratorsFor implements core.DecoratorLookup: it returns every
// decorator registration declared against svc, in registration order (the
// decoration middleware applies them in this order, so the most recently
// registered ends up outermost).
func (r *Registry) DecoratorsFor(svc core.Service) ([]*core.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := toServiceKey(svc)
	local := r.decorators[key]
	if r.parent == nil {
		return append([]*core.Registration{}, local...), nil
	}
	parentDecorators, err := r.parent.DecoratorsFor(svc)
	if err != nil {
		return nil, err
	}
	return append(append([]*core.Registration{}, parentDecorators...), local...), nil
}

// RegistrationByID looks up a registration by its identity, searching
// ancestors if not found locally. Used by resolve-by-registration paths
// (e.g. re-resolving a specific decorator registration).
func (r *Registry) RegistrationByID(id string) (*core.Registration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.byID[id]; ok {
		return reg, true
	}
	if r.parent != nil {
		return r.parent.RegistrationByID(id)
	}
	return nil, false
}

// AutoActivateServices returns every service registered locally (not
// inherited from a parent) whose key carries the auto-activate sentinel,
// for a scope to resolve eagerly once it finishes building.
func (r *Registry) AutoActivateServices() []core.Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Service
	for _, info := range r.infos {
		if info.service.IsAutoActivate() {
			out = append(out, info.service)
		}
	}
	return out
}

// IsRegistered reports whether svc has at least one registration or
// applicable source, without forcing source draining's side effects
// beyond the lookup itself.
func (r *Registry) IsRegistered(svc core.Service) (bool, error) {
	regs, err := r.ServicesFor(svc)
	if err != nil {
		return false, err
	}
	return len(regs) > 0, nil
}
