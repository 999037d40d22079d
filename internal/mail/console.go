package mail

import (
	"context"
	"log/slog"
	"strings"
)

// ConsoleMailer writes messages to the application log. Meant for development.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger.With("component", "mail")}
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "outgoing mail",
		"from", msg.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
