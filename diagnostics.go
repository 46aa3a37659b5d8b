package ioc

import "github.com/corewell/ioc/internal/core"

// DiagnosticListener receives structured events around resolve
// operations, requests, and middleware invocations. IsEnabled is sampled
// once per invocation site, so a disabled listener costs one boolean
// check on the hot path.
type DiagnosticListener = core.DiagnosticListener

// NoopListener is a DiagnosticListener that is always disabled.
type NoopListener = core.NoopListener

// Diagnostic event keys written to a DiagnosticListener.
const (
	EventOperationStart   = core.EventOperationStart
	EventOperationSuccess = core.EventOperationSuccess
	EventOperationFailure = core.EventOperationFailure
	EventRequestStart     = core.EventRequestStart
	EventRequestSuccess   = core.EventRequestSuccess
	EventRequestFailure   = core.EventRequestFailure
	EventMiddlewareStart  = core.EventMiddlewareStart
	EventMiddlewareSuccess = core.EventMiddlewareSuccess
	EventMiddlewareFailure = core.EventMiddlewareFailure
)

// OperationEvent, RequestEvent, and MiddlewareEvent are the payload types
// written to a DiagnosticListener for their corresponding event keys.
type (
	OperationEvent  = core.OperationEvent
	RequestEvent    = core.RequestEvent
	MiddlewareEvent = core.MiddlewareEvent
)
