package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"github.com/sitekit/mailrelay/internal/models"
)

// HTTPClient implements Client against the provider's REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	downloader *http.Client
}

// NewHTTPClient creates a provider client from viper configuration.
func NewHTTPClient() *HTTPClient {
	baseURL := viper.GetString("provider.api_url")
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}

	timeout := viper.GetInt("provider.timeout_seconds")
	if timeout <= 0 {
		timeout = 15
	}
	downloadTimeout := viper.GetInt("downloads.timeout_seconds")
	if downloadTimeout <= 0 {
		downloadTimeout = 30
	}

	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  viper.GetString("provider.api_key"),
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		downloader: &http.Client{
			Timeout: time.Duration(downloadTimeout) * time.Second,
		},
	}
}

// GetMessage implements Client.GetMessage.
func (p *HTTPClient) GetMessage(ctx context.Context, emailID string) (*models.FetchedMessage, error) {
	url := fmt.Sprintf("%s/emails/%s", p.baseURL, emailID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var msg models.FetchedMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &msg, nil
}

// ListAttachments implements Client.ListAttachments.
func (p *HTTPClient) ListAttachments(ctx context.Context, emailID string) ([]models.AttachmentRef, error) {
	url := fmt.Sprintf("%s/emails/%s/attachments", p.baseURL, emailID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var listing struct {
		Data []models.AttachmentRef `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return listing.Data, nil
}

// DownloadAttachment implements Client.DownloadAttachment. The download URL
// is pre-signed by the provider, so no Authorization header is attached.
func (p *HTTPClient) DownloadAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading attachment", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment body: %w", err)
	}

	return content, nil
}

// SendMessage implements Client.SendMessage.
func (p *HTTPClient) SendMessage(ctx context.Context, envelope *models.ForwardedEnvelope) (string, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}

	url := fmt.Sprintf("%s/emails", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return sent.ID, nil
}

func (p *HTTPClient) authorize(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}
