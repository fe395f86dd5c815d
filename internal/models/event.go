package models

import "time"

// EventTypeEmailReceived is the only inbound event type the relay acts on.
// Any other type is acknowledged and ignored.
const EventTypeEmailReceived = "email.received"

// InboundEvent is the webhook payload pushed by the email provider when
// something happens to a monitored address. It is parsed once from the raw
// request body and never mutated afterwards.
type InboundEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      EventData `json:"data"`
}

// EventData carries the message metadata attached to an inbound event.
type EventData struct {
	EmailID     string          `json:"email_id"`
	From        string          `json:"from"`
	To          []string        `json:"to"`
	CC          []string        `json:"cc,omitempty"`
	BCC         []string        `json:"bcc,omitempty"`
	Subject     string          `json:"subject"`
	MessageID   string          `json:"message_id"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// AttachmentRef is attachment metadata only - no bytes. The event may carry a
// stale copy, so the authoritative list is always re-fetched from the provider.
type AttachmentRef struct {
	ID                 string `json:"id"`
	Filename           string `json:"filename"`
	ContentType        string `json:"content_type"`
	ContentDisposition string `json:"content_disposition,omitempty"`
	ContentID          string `json:"content_id,omitempty"`
	DownloadURL        string `json:"download_url"`
}

// Relevant reports whether the event should trigger forwarding.
func (e *InboundEvent) Relevant() bool {
	return e.Type == EventTypeEmailReceived
}
