package printshop

import (
	"context"

	"go.uber.org/zap"
)

// Telemetry records print shop events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// ZapTelemetry writes telemetry events as structured log lines.
type ZapTelemetry struct {
	Logger *zap.Logger
}

// NewZapTelemetry wraps logger; a nil logger disables output.
func NewZapTelemetry(logger *zap.Logger) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTelemetry{Logger: logger}
}

// Record logs the event at info level with the payload flattened into fields.
func (t *ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload))
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	t.Logger.Info(event, fields...)
}
