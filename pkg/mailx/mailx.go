// Package mailx delivers transactional email. SMTPDispatcher talks to a real
// relay; LogDispatcher writes envelopes to the log for local development.
package mailx

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Envelope is one outbound message. Both bodies are sent as alternatives.
type Envelope struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// ErrNoRecipient is returned for envelopes without a To address.
var ErrNoRecipient = errors.New("mailx: envelope has no recipient")

// Validate checks the envelope can be handed to a transport.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.To) == "" {
		return ErrNoRecipient
	}
	if e.HTML == "" && e.Text == "" {
		return errors.New("mailx: envelope has no body")
	}
	return nil
}

// Dispatcher sends an Envelope. A nil error means the outbound transport
// accepted the message.
type Dispatcher interface {
	Send(ctx context.Context, env Envelope) error
}

// LogDispatcher logs envelopes instead of sending them.
type LogDispatcher struct {
	Logger *slog.Logger
	From   string
}

func (d LogDispatcher) Send(ctx context.Context, env Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not sent (log transport)",
		slog.String("from", d.From),
		slog.String("to", env.To),
		slog.String("subject", env.Subject),
		slog.String("text", env.Text),
	)
	return nil
}
