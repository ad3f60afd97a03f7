package mailx

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPDispatcher relays mail through an SMTP server, using STARTTLS when the
// server offers it.
type SMTPDispatcher struct {
	client *mail.Client
	from   string
}

func NewSMTPDispatcher(cfg SMTPConfig) (*SMTPDispatcher, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mailx: smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mailx: from address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailx: smtp client: %w", err)
	}

	return &SMTPDispatcher{client: client, from: cfg.From}, nil
}

// Send builds a multipart/alternative message and hands it to the relay.
func (d *SMTPDispatcher) Send(ctx context.Context, env Envelope) error {
	msg, err := d.buildMessage(env)
	if err != nil {
		return err
	}
	if err := d.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailx: send to %s: %w", env.To, err)
	}
	return nil
}

func (d *SMTPDispatcher) buildMessage(env Envelope) (*mail.Msg, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return nil, fmt.Errorf("mailx: from address: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("mailx: recipient address: %w", err)
	}
	msg.Subject(env.Subject)

	switch {
	case env.Text != "" && env.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, env.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, env.HTML)
	case env.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, env.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, env.Text)
	}

	return msg, nil
}
