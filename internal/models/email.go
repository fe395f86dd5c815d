package models

// FetchedMessage is the full message body as returned by the provider.
// An empty string means the provider did not return that representation;
// precedence when building the forward is html > text > literal fallback.
type FetchedMessage struct {
	ID      string   `json:"id"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// DownloadedAttachment is produced only for references whose download
// succeeded. Content is the base64-encoded binary.
type DownloadedAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ForwardedEnvelope is the outbound message handed to the dispatcher.
// Built fresh per request, never persisted. Attachments is a subset of the
// provider's attachment list, in listing order; it is omitted from the wire
// payload entirely when empty.
type ForwardedEnvelope struct {
	From        string                 `json:"from"`
	To          []string               `json:"to"`
	Subject     string                 `json:"subject"`
	HTML        string                 `json:"html"`
	Text        string                 `json:"text"`
	Attachments []DownloadedAttachment `json:"attachments,omitempty"`
}
