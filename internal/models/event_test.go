package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

const rawEvent = `{
	"type": "email.received",
	"created_at": "2025-03-01T12:00:00Z",
	"data": {
		"email_id": "em_1",
		"from": "alice@example.com",
		"to": ["hello@site.example"],
		"cc": ["bob@example.com"],
		"subject": "Hi there",
		"message_id": "<abc@example.com>",
		"attachments": [
			{"id": "att_1", "filename": "a.pdf", "content_type": "application/pdf", "download_url": "https://files.example/a"}
		]
	}
}`

// Parsing the same bytes twice yields structurally identical values; the
// decode path keeps no hidden state.
func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	var first, second InboundEvent
	if err := json.Unmarshal([]byte(rawEvent), &first); err != nil {
		t.Fatalf("first parse: %v", err)
	}
	if err := json.Unmarshal([]byte(rawEvent), &second); err != nil {
		t.Fatalf("second parse: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("parses differ:\n%+v\n%+v", first, second)
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	cases := []struct {
		eventType string
		want      bool
	}{
		{"email.received", true},
		{"email.bounced", false},
		{"email.delivered", false},
		{"", false},
	}

	for _, tc := range cases {
		e := &InboundEvent{Type: tc.eventType}
		if got := e.Relevant(); got != tc.want {
			t.Errorf("Relevant(%q): got %v, want %v", tc.eventType, got, tc.want)
		}
	}
}

func TestEventFieldsRoundTrip(t *testing.T) {
	t.Parallel()

	var event InboundEvent
	if err := json.Unmarshal([]byte(rawEvent), &event); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if event.Data.EmailID != "em_1" {
		t.Errorf("EmailID: got %q", event.Data.EmailID)
	}
	if len(event.Data.Attachments) != 1 || event.Data.Attachments[0].Filename != "a.pdf" {
		t.Errorf("Attachments: got %+v", event.Data.Attachments)
	}
	if len(event.Data.CC) != 1 || event.Data.CC[0] != "bob@example.com" {
		t.Errorf("CC: got %v", event.Data.CC)
	}
}
