package provider

import (
	"context"

	"github.com/sitekit/mailrelay/internal/models"
)

// Client defines the operations the relay consumes from the email-delivery
// provider's REST API. All calls carry a context and a bounded timeout.
type Client interface {
	// GetMessage retrieves the full message body for an email id.
	GetMessage(ctx context.Context, emailID string) (*models.FetchedMessage, error)

	// ListAttachments retrieves the authoritative attachment listing for an
	// email id. An empty slice means the message has no attachments.
	ListAttachments(ctx context.Context, emailID string) ([]models.AttachmentRef, error)

	// DownloadAttachment fetches the binary content behind an attachment's
	// download URL. Provider-agnostic plain HTTP GET.
	DownloadAttachment(ctx context.Context, url string) ([]byte, error)

	// SendMessage submits an outbound message and returns the provider's id
	// for it.
	SendMessage(ctx context.Context, envelope *models.ForwardedEnvelope) (string, error)
}
