package service

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/accounts/pkg/mailx"
)

const verificationSubject = "Verify email"

var verificationHTML = template.Must(template.New("verify").Parse(
	`<p>To confirm your registration please click on the <a href="{{.}}">link</a>.</p>`,
))

// VerificationMailer composes and sends the email-ownership link.
type VerificationMailer struct {
	// BaseURL is the public origin of the HTTP surface, e.g. http://localhost:8080.
	BaseURL    string
	Dispatcher mailx.Dispatcher
}

// Link returns <BaseURL>/verify/<token>.
func (m *VerificationMailer) Link(token string) string {
	return strings.TrimRight(m.BaseURL, "/") + "/verify/" + url.PathEscape(token)
}

// Envelope builds the verification message for one recipient.
func (m *VerificationMailer) Envelope(to, token string) (mailx.Envelope, error) {
	link := m.Link(token)

	var html bytes.Buffer
	if err := verificationHTML.Execute(&html, link); err != nil {
		return mailx.Envelope{}, err
	}

	return mailx.Envelope{
		To:      to,
		Subject: verificationSubject,
		HTML:    html.String(),
		Text:    "To confirm your registration please open the link " + link,
	}, nil
}

// Send dispatches the verification message. Any error is a DispatchFailure.
func (m *VerificationMailer) Send(ctx context.Context, to, token string) error {
	env, err := m.Envelope(to, token)
	if err != nil {
		return failWith(ErrDispatchFailure, MsgMailNotSent, err)
	}
	if err := m.Dispatcher.Send(ctx, env); err != nil {
		return failWith(ErrDispatchFailure, MsgMailNotSent, err)
	}
	return nil
}
