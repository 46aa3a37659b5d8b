package core

import "fmt"

// LifetimeKind selects which ancestor scope owns a shared registration's
// cached instance, per spec §3/§4.5.
type LifetimeKind int

const (
	// CurrentScopeLifetime caches in (or never caches for) the scope that
	// performed the resolve.
	CurrentScopeLifetime LifetimeKind = iota
	// RootScopeLifetime always caches in the root scope, regardless of
	// where the resolve happened.
	RootScopeLifetime
	// MatchingScopeLifetime caches in the nearest ancestor whose tag
	// equals Lifetime.Tag, failing with NoMatchingScopeError if none
	// exists.
	MatchingScopeLifetime
)

func (k LifetimeKind) String() string {
	switch k {
	case CurrentScopeLifetime:
		return "CurrentScope"
	case RootScopeLifetime:
		return "RootScope"
	case MatchingScopeLifetime:
		return "MatchingScope"
	default:
		return fmt.Sprintf("LifetimeKind(%d)", int(k))
	}
}

// Lifetime is the strategy a registration uses to pick its sharing scope.
type Lifetime struct {
	Kind LifetimeKind
	Tag  string // only meaningful when Kind == MatchingScopeLifetime
}

// CurrentScope is the lifetime strategy for instances owned by whichever
// scope resolves them.
func CurrentScope() Lifetime { return Lifetime{Kind: CurrentScopeLifetime} }

// RootScope is the lifetime strategy that always shares through the root.
func RootScope() Lifetime { return Lifetime{Kind: RootScopeLifetime} }

// MatchingScope is the lifetime strategy that shares through the nearest
// ancestor scope tagged with tag.
func MatchingScope(tag string) Lifetime {
	return Lifetime{Kind: MatchingScopeLifetime, Tag: tag}
}

// Sharing is whether a registration's instance is cached at all within its
// chosen scope.
type Sharing int

const (
	// NotShared means every resolve of the registration activates a new
	// instance; nothing is cached.
	NotShared Sharing = iota
	// Shared means instances are cached by registration identity within
	// the scope the Lifetime strategy selects.
	Shared
)

func (s Sharing) String() string {
	if s == Shared {
		return "Shared"
	}
	return "NotShared"
}

// Ownership decides whether a scope's disposer takes responsibility for a
// produced instance.
type Ownership int

const (
	// OwnedByLifetimeScope means the activating scope disposes the
	// instance (if disposable) when the scope itself is disposed.
	OwnedByLifetimeScope Ownership = iota
	// ExternallyOwned means the core never disposes the instance.
	ExternallyOwned
)

func (o Ownership) String() string {
	if o == ExternallyOwned {
		return "ExternallyOwned"
	}
	return "OwnedByLifetimeScope"
}
