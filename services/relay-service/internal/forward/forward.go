// Package forward dispatches assembled envelopes through an outbound send
// backend. A single attempt per envelope - retrying here would duplicate
// forwards whenever the provider re-delivers the webhook.
package forward

import (
	"context"

	"github.com/sitekit/mailrelay/internal/models"
)

// Sender is the interface outbound backends must implement.
type Sender interface {
	// Send delivers the envelope and returns the backend's message id.
	Send(ctx context.Context, envelope *models.ForwardedEnvelope) (string, error)

	// Name returns the human-readable name of this backend.
	Name() string
}
