package ioc

import (
	"github.com/corewell/ioc/internal/core"
	"github.com/corewell/ioc/internal/pipeline"
)

// Handler is one composed step of a built pipeline.
type Handler = pipeline.Handler

// Middleware is a composable registration-pipeline step, inserted into
// phases RegistrationPipelineStart..Activation via WithRegistrationMiddleware.
type Middleware = pipeline.Middleware

// Phase orders middleware within a pipeline.
type Phase = core.Phase

// InsertMode controls where, among entries of equal phase, a new
// middleware lands.
type InsertMode = core.InsertMode

const (
	EndOfPhase   = core.EndOfPhase
	StartOfPhase = core.StartOfPhase
)

// Registration pipeline phases a Middleware may be inserted into.
const (
	RegistrationPipelineStart = core.RegistrationPipelineStart
	ParameterSelection        = core.ParameterSelection
	Activation                = core.Activation
)

// WithRegistrationMiddleware adds mw to phase, per mode, on the
// registration's own pipeline (spec §4.2: registrations may declare
// middleware only in phases RegistrationPipelineStart..Activation).
func WithRegistrationMiddleware(phase Phase, mode InsertMode, name string, mw Middleware) RegistrationOption {
	return func(r *core.Registration) {
		r.RegistrationMiddleware = append(r.RegistrationMiddleware, core.MiddlewareEntry{
			Phase: phase, Mode: mode, Name: name, Middleware: mw,
		})
	}
}
