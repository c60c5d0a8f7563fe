package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/staff-registry/internal/core/events"
)

// subscribeAuditLog writes every session and registration event to the log.
// Reuse detection is logged at warn since it usually means a stolen token.
func subscribeAuditLog(bus *events.EventBus, lg *slog.Logger) {
	audit := lg.With("component", "audit")

	handler := func(level slog.Level) events.Handler {
		return func(ctx context.Context, event events.Event) error {
			audit.Log(ctx, level, "event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"occurred_at", event.OccurredAt(),
				"payload", event.Payload())
			return nil
		}
	}

	for _, t := range []string{
		events.EventTypeSessionLogin,
		events.EventTypeSessionRefreshed,
		events.EventTypeSessionRevoked,
		events.EventTypeRegistrationSubmitted,
		events.EventTypeRegistrationAccepted,
		events.EventTypeRegistrationRejected,
	} {
		bus.Subscribe(t, handler(slog.LevelInfo))
	}

	for _, t := range []string{
		events.EventTypeSessionLoginFailed,
		events.EventTypeSessionReuseDetected,
		events.EventTypeNotificationFailed,
	} {
		bus.Subscribe(t, handler(slog.LevelWarn))
	}
}
