// Package diagzap adapts ioc.DiagnosticListener onto a *zap.Logger, so a
// container's resolve operations, requests, and middleware invocations
// show up as structured log lines at Debug level.
package diagzap

import (
	"go.uber.org/zap"

	"github.com/corewell/ioc/internal/core"
)

// Listener logs every diagnostic event at Debug level through a
// *zap.Logger. It is enabled whenever the logger's core would actually
// emit a Debug entry, so a production logger configured above Debug costs
// one cheap check per invocation.
type Listener struct {
	log *zap.Logger
}

// New wraps log. A nil log falls back to zap.NewNop(), matching
// core.NoopListener's always-disabled behavior.
func New(log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{log: log.Named("ioc")}
}

func (l *Listener) IsEnabled() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}

func (l *Listener) Write(eventKey string, payload any) {
	switch p := payload.(type) {
	case core.OperationEvent:
		fields := []zap.Field{
			zap.String("operation_id", p.OperationID),
			zap.String("entry_scope", p.EntryScope),
			zap.String("service", p.Service.String()),
		}
		if p.Err != nil {
			fields = append(fields, zap.Error(p.Err))
		}
		l.log.Debug(eventKey, fields...)
	case core.RequestEvent:
		fields := []zap.Field{
			zap.String("operation_id", p.OperationID),
			zap.String("service", p.Service.String()),
		}
		if p.Registration != nil {
			fields = append(fields, zap.String("registration_id", p.Registration.ID.String()))
		}
		if p.Err != nil {
			fields = append(fields, zap.Error(p.Err))
		}
		l.log.Debug(eventKey, fields...)
	case core.MiddlewareEvent:
		fields := []zap.Field{
			zap.String("operation_id", p.OperationID),
			zap.String("pipeline", p.PipelineKind),
			zap.String("phase", p.Phase.String()),
			zap.String("middleware", p.Name),
		}
		if p.Err != nil {
			fields = append(fields, zap.Error(p.Err))
		}
		l.log.Debug(eventKey, fields...)
	default:
		l.log.Debug(eventKey, zap.Any("payload", payload))
	}
}

var _ core.DiagnosticListener = (*Listener)(nil)
