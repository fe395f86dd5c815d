package forward

import (
	"context"
	"fmt"

	"github.com/sitekit/mailrelay/internal/models"
	"github.com/sitekit/mailrelay/services/relay-service/internal/provider"
)

// ProviderSender sends the forward back through the email-delivery
// provider's own send API. This is the default backend.
type ProviderSender struct {
	client provider.Client
}

// NewProviderSender creates a ProviderSender on top of an existing provider
// client.
func NewProviderSender(client provider.Client) *ProviderSender {
	return &ProviderSender{client: client}
}

// Send implements Sender.Send.
func (s *ProviderSender) Send(ctx context.Context, envelope *models.ForwardedEnvelope) (string, error) {
	id, err := s.client.SendMessage(ctx, envelope)
	if err != nil {
		return "", fmt.Errorf("failed to send through provider: %w", err)
	}
	return id, nil
}

// Name implements Sender.Name.
func (s *ProviderSender) Name() string {
	return "provider"
}
