package forward

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sitekit/mailrelay/internal/models"
)

// SendGridSender is an alternative outbound backend for deployments that
// deliver the forward through SendGrid instead of the inbound provider.
type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGridSender creates a SendGridSender for the given API key.
func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey)}
}

// Send implements Sender.Send.
func (s *SendGridSender) Send(ctx context.Context, envelope *models.ForwardedEnvelope) (string, error) {
	resp, err := s.client.SendWithContext(ctx, BuildMail(envelope))
	if err != nil {
		return "", fmt.Errorf("failed to send through sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

// Name implements Sender.Name.
func (s *SendGridSender) Name() string {
	return "sendgrid"
}

// BuildMail converts an envelope into a SendGrid message. Split out so the
// mapping can be tested without a network call.
func BuildMail(envelope *models.ForwardedEnvelope) *mail.SGMailV3 {
	from := mail.NewEmail("", envelope.From)

	m := mail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = envelope.Subject

	p := mail.NewPersonalization()
	for _, addr := range envelope.To {
		p.AddTos(mail.NewEmail("", addr))
	}
	m.AddPersonalizations(p)

	m.AddContent(
		mail.NewContent("text/plain", envelope.Text),
		mail.NewContent("text/html", envelope.HTML),
	)

	for _, att := range envelope.Attachments {
		a := mail.NewAttachment()
		a.SetFilename(att.Filename)
		a.SetContent(att.Content)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}

	return m
}
