package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events as structured log lines. It is the fallback when no
// broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event Event) error {
	attrs := []any{
		"event_id", event.ID.String(),
		"action", string(event.Action),
		"epic_no", event.EPICNo,
		"actor", event.Actor,
		"request_id", event.RequestID,
		"timestamp", event.Timestamp,
	}
	for k, v := range event.Detail {
		attrs = append(attrs, "detail."+k, v)
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
