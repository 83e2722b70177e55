// Package notify delivers alert messages to farmers over the configured
// channels (email, sms, whatsapp, push). Delivery is best-effort per
// channel: a failing channel is logged and skipped, never propagated, so
// one broken provider cannot block the others.
package notify

import (
	"context"
	"log/slog"

	"cropwatch/internal/types"
)

// Channel is one delivery transport for alert messages.
type Channel interface {
	// Name identifies the channel in logs and config ("email", "sms", ...).
	Name() string
	// Send delivers one alert to the recipient. Implementations own their
	// timeouts and retries.
	Send(ctx context.Context, recipient string, kind types.AlertKind, msg types.AlertMessage) error
}

// Dispatcher fans one alert out to every configured channel.
type Dispatcher struct {
	channels  []Channel
	recipient string
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher sending to the given recipient over
// the given channels. A nil logger defaults to slog.Default.
func NewDispatcher(channels []Channel, recipient string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		channels:  channels,
		recipient: recipient,
		logger:    logger,
	}
}

// Dispatch sends the alert on every channel. Failures are logged per
// channel and do not stop the fan-out.
func (d *Dispatcher) Dispatch(ctx context.Context, kind types.AlertKind, msg types.AlertMessage) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, d.recipient, kind, msg); err != nil {
			d.logger.ErrorContext(ctx, "alert delivery failed",
				"channel", ch.Name(),
				"alert_kind", kind,
				"task_id", msg.TaskID,
				"error", err,
			)
			continue
		}
		d.logger.InfoContext(ctx, "alert delivered",
			"channel", ch.Name(),
			"alert_kind", kind,
			"task_id", msg.TaskID,
		)
	}
}
