package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail implementation that writes messages to a logger instead of
// delivering them.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log driver. A nil logger uses slog.Default at send time.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Send logs the message.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(recipients(msg)) == 0 {
		return ErrSMTPNoRecipients
	}

	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "mail: message captured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)

	return nil
}

// Close is a no-op.
func (l *Log) Close() error {
	return nil
}
