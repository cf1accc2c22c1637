package services

import "go.uber.org/zap"

// AuditLogger is the write-only staff-action sink. Implementations must be
// fire-and-forget: a failing sink never aborts or rolls back the operation
// that triggered it.
type AuditLogger interface {
	Log(actor Identity, action string, fields map[string]any)
}

// zapAudit writes audit records as structured log entries.
type zapAudit struct {
	logger *zap.Logger
}

// NewZapAudit wraps a zap logger as an audit sink. A nil logger yields a
// no-op sink.
func NewZapAudit(logger *zap.Logger) AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapAudit{logger: logger}
}

func (a *zapAudit) Log(actor Identity, action string, fields map[string]any) {
	defer func() {
		// Audit failures are swallowed.
		_ = recover()
	}()
	zf := make([]zap.Field, 0, len(fields)+3)
	zf = append(zf,
		zap.Uint("actor_id", actor.ID),
		zap.String("actor_username", actor.Username),
		zap.String("action", action),
	)
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	a.logger.Info("staff_action", zf...)
}
