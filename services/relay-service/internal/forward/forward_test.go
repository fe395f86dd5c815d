package forward

import (
	"context"
	"errors"
	"testing"

	"github.com/sitekit/mailrelay/internal/models"
)

type stubClient struct {
	sentID  string
	sendErr error
	got     *models.ForwardedEnvelope
}

func (s *stubClient) GetMessage(ctx context.Context, emailID string) (*models.FetchedMessage, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) ListAttachments(ctx context.Context, emailID string) ([]models.AttachmentRef, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) DownloadAttachment(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) SendMessage(ctx context.Context, envelope *models.ForwardedEnvelope) (string, error) {
	s.got = envelope
	return s.sentID, s.sendErr
}

func testEnvelope() *models.ForwardedEnvelope {
	return &models.ForwardedEnvelope{
		From:    "relay@site.example",
		To:      []string{"inbox@site.example"},
		Subject: "[Forwarded] Hello",
		HTML:    "<p>hi</p>",
		Text:    "From: alice@example.com\n\nhi",
		Attachments: []models.DownloadedAttachment{
			{Filename: "a.pdf", Content: "aGVsbG8="},
		},
	}
}

func TestProviderSenderSend(t *testing.T) {
	t.Parallel()

	client := &stubClient{sentID: "sent_9"}
	s := NewProviderSender(client)

	id, err := s.Send(context.Background(), testEnvelope())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "sent_9" {
		t.Errorf("id: got %q, want sent_9", id)
	}
	if client.got == nil || client.got.Subject != "[Forwarded] Hello" {
		t.Errorf("envelope passed through: got %+v", client.got)
	}
	if s.Name() != "provider" {
		t.Errorf("Name: got %q", s.Name())
	}
}

func TestProviderSenderWrapsError(t *testing.T) {
	t.Parallel()

	client := &stubClient{sendErr: errors.New("quota exceeded")}
	s := NewProviderSender(client)

	if _, err := s.Send(context.Background(), testEnvelope()); err == nil {
		t.Fatal("Send: got nil error, want failure")
	}
}

func TestBuildMail(t *testing.T) {
	t.Parallel()

	m := BuildMail(testEnvelope())

	if m.From.Address != "relay@site.example" {
		t.Errorf("From: got %q", m.From.Address)
	}
	if m.Subject != "[Forwarded] Hello" {
		t.Errorf("Subject: got %q", m.Subject)
	}
	if len(m.Personalizations) != 1 || len(m.Personalizations[0].To) != 1 {
		t.Fatalf("Personalizations: got %+v", m.Personalizations)
	}
	if m.Personalizations[0].To[0].Address != "inbox@site.example" {
		t.Errorf("To: got %q", m.Personalizations[0].To[0].Address)
	}

	if len(m.Content) != 2 {
		t.Fatalf("Content: got %d parts, want 2", len(m.Content))
	}
	if m.Content[0].Type != "text/plain" || m.Content[1].Type != "text/html" {
		t.Errorf("Content types: got %q, %q", m.Content[0].Type, m.Content[1].Type)
	}

	if len(m.Attachments) != 1 {
		t.Fatalf("Attachments: got %d, want 1", len(m.Attachments))
	}
	att := m.Attachments[0]
	if att.Filename != "a.pdf" || att.Content != "aGVsbG8=" || att.Disposition != "attachment" {
		t.Errorf("Attachment: got %+v", att)
	}
}

func TestBuildMailWithoutAttachments(t *testing.T) {
	t.Parallel()

	envelope := testEnvelope()
	envelope.Attachments = nil

	m := BuildMail(envelope)
	if len(m.Attachments) != 0 {
		t.Errorf("Attachments: got %d, want 0", len(m.Attachments))
	}
}
