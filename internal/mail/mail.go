// Package mail delivers outbound messages such as signup confirmation codes.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"yamdb/internal/config"
)

// Message is a plain-text mail.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Mailer sends a message or reports why it could not.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the backend named by MAIL_BACKEND.
func New(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.MailBackend {
	case "console":
		return NewConsoleMailer(logger), nil
	case "file":
		return NewFileMailer(cfg.EmailFilePath)
	case "amqp":
		return NewAMQPMailer(cfg.AMQPURL, cfg.MailQueue), nil
	}
	return nil, fmt.Errorf("unknown mail backend %q", cfg.MailBackend)
}
