package notification

import (
	"context"
	"log/slog"
)

// LogNotifier renders the message and logs it instead of sending. Used in
// development mode.
type LogNotifier struct {
	renderer *Renderer
	logger   *slog.Logger
}

func NewLogNotifier(renderer *Renderer, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{renderer: renderer, logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, address string, outcome Outcome, reason, name string) error {
	msg, err := n.renderer.Render(outcome, reason, name)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "notification (not sent)",
		"to", address,
		"outcome", outcome,
		"subject", msg.Subject,
		"body", msg.Text)
	return nil
}
