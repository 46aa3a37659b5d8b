// Package pipeline implements the phased middleware chain from spec §4.2:
// two pipeline kinds (service-keyed and registration-keyed), phase-ordered
// insertion, tail-to-head composition into a single callable, and
// sampled-once diagnostics around every middleware invocation.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/corewell/ioc/internal/core"
)

// Handler is one composed step of a built pipeline: it receives the
// mutable request context and runs until it returns (or a middleware
// above it short-circuits).
type Handler func(ctx *core.RequestContext) error

// Middleware is a composable pipeline step. It decides whether, when, and
// with what context to invoke next; it may inspect or mutate ctx before
// and/or after calling next.
type Middleware func(ctx *core.RequestContext, next Handler) error

// Kind names which of the two pipeline shapes a Builder is.
type Kind string

const (
	ServiceKind      Kind = "service"
	RegistrationKind Kind = "registration"
)

type entry struct {
	phase core.Phase
	mode  core.InsertMode
	name  string
	mw    Middleware
	order int
}

// Builder accumulates middleware for one pipeline (service or
// registration) and compiles it into a single Handler.
type Builder struct {
	kind     Kind
	minPhase core.Phase
	maxPhase core.Phase
	entries  []entry
	built    bool
	compiled Handler
	counter  int
}

// NewServiceBuilder creates a builder for a service pipeline, accepting
// middleware only in phases ResolveRequestStart..ServicePipelineEnd.
func NewServiceBuilder() *Builder {
	return &Builder{kind: ServiceKind, minPhase: core.ResolveRequestStart, maxPhase: core.ServicePipelineMaxPhase}
}

// NewRegistrationBuilder creates a builder for a registration pipeline,
// accepting middleware only in phases RegistrationPipelineStart..Activation.
func NewRegistrationBuilder() *Builder {
	return &Builder{kind: RegistrationKind, minPhase: core.RegistrationPipelineMinPhase, maxPhase: core.Activation}
}

func (b *Builder) validatePhase(phase core.Phase) error {
	if phase < b.minPhase || phase > b.maxPhase {
		return &core.PipelinePhaseViolationError{PipelineKind: string(b.kind), Phase: phase}
	}
	return nil
}

// Use inserts mw at phase, per mode, relative to whatever is already
// present at that phase (spec §4.2).
func (b *Builder) Use(phase core.Phase, mode core.InsertMode, name string, mw Middleware) error {
	if b.built {
		return core.ErrPipelineBuilt
	}
	if err := b.validatePhase(phase); err != nil {
		return err
	}

	e := entry{phase: phase, mode: mode, name: name, mw: mw, order: b.counter}
	b.counter++

	var idx int
	if mode == core.EndOfPhase {
		idx = sort.Search(len(b.entries), func(i int) bool { return b.entries[i].phase > phase })
	} else {
		idx = sort.Search(len(b.entries), func(i int) bool { return b.entries[i].phase >= phase })
	}

	b.entries = append(b.entries, entry{})
	copy(b.entries[idx+1:], b.entries[idx:])
	b.entries[idx] = e
	return nil
}

// Item is one bulk-insertion request for UseRange.
type Item struct {
	Phase core.Phase
	Mode  core.InsertMode
	Name  string
	Mw    Middleware
}

// UseRange bulk-inserts items, preserving caller order. items must be
// phase-monotonic non-decreasing (spec §4.2).
func (b *Builder) UseRange(items []Item) error {
	for i := 1; i < len(items); i++ {
		if items[i].Phase < items[i-1].Phase {
			return fmt.Errorf("ioc: UseRange requires phase-monotonic non-decreasing input, got %s after %s", items[i].Phase, items[i-1].Phase)
		}
	}
	// Use puts each StartOfPhase entry in front of its phase; move it back
	// behind the StartOfPhase entries this call already inserted for that
	// phase so they keep the caller's order.
	startRun := make(map[core.Phase]int)
	for _, it := range items {
		if err := b.Use(it.Phase, it.Mode, it.Name, it.Mw); err != nil {
			return err
		}
		if it.Mode != core.StartOfPhase {
			continue
		}
		first := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].phase >= it.Phase })
		n := startRun[it.Phase]
		e := b.entries[first]
		copy(b.entries[first:first+n], b.entries[first+1:first+n+1])
		b.entries[first+n] = e
		startRun[it.Phase] = n + 1
	}
	return nil
}

// Build composes the chain tail-to-head, terminating in terminal (the
// no-op for a registration pipeline, or the registration pipeline's own
// built Handler when compiling a service pipeline — spec §4.2's "the
// terminal service-pipeline-end middleware chains into the registration's
// own built pipeline"). Build is idempotent: subsequent calls with the
// same terminal return the cached composition; further Use calls after
// the first Build fail with ErrPipelineBuilt.
func (b *Builder) Build(terminal Handler) Handler {
	if b.built {
		return b.compiled
	}
	if terminal == nil {
		terminal = func(*core.RequestContext) error { return nil }
	}

	composed := terminal
	for i := len(b.entries) - 1; i >= 0; i-- {
		composed = b.wrap(b.entries[i], composed)
	}

	b.built = true
	b.compiled = composed
	return composed
}

func (b *Builder) wrap(e entry, next Handler) Handler {
	kind := string(b.kind)
	return func(ctx *core.RequestContext) error {
		ctx.PhaseReached = e.phase

		listener := ctx.Operation.Diagnostics
		enabled := listener != nil && listener.IsEnabled()
		if enabled {
			listener.Write(core.EventMiddlewareStart, core.MiddlewareEvent{
				OperationID: ctx.Operation.ID, PipelineKind: kind, Phase: e.phase, Name: e.name,
			})
		}

		err := e.mw(ctx, next)

		if enabled {
			eventKey := core.EventMiddlewareSuccess
			if err != nil {
				eventKey = core.EventMiddlewareFailure
			}
			listener.Write(eventKey, core.MiddlewareEvent{
				OperationID: ctx.Operation.ID, PipelineKind: kind, Phase: e.phase, Name: e.name, Err: err,
			})
		}

		return err
	}
}
