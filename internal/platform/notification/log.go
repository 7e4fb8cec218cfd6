package notification

import (
	"context"
	"log/slog"
)

// LogTransport writes notifications to the log instead of delivering them.
// Used in development so the setup token can be copied from the output.
type LogTransport struct{}

func NewLogTransport() *LogTransport { return &LogTransport{} }

func (LogTransport) Name() string { return "log" }

func (LogTransport) Send(ctx context.Context, msg *Message) error {
	slog.InfoContext(ctx, "Notification",
		"id", msg.ID,
		"kind", msg.Kind,
		"recipient", msg.Recipient,
		"data", msg.Data)
	return nil
}

// Discard drops every message. It is the Sender used when notifications
// are disabled.
type Discard struct{}

func (Discard) Enqueue(*Message) {}
