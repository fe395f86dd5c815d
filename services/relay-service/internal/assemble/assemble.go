// Package assemble builds a forwardable copy of a received message from the
// provider's message body and attachment listing.
package assemble

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sitekit/mailrelay/internal/logger"
	"github.com/sitekit/mailrelay/internal/models"
	"github.com/sitekit/mailrelay/services/relay-service/internal/provider"
)

// FallbackBody is used when the source message has neither an HTML nor a
// text representation. The forwarded plaintext body is never empty.
const FallbackBody = "No content"

// SubjectPrefix marks every forwarded subject.
const SubjectPrefix = "[Forwarded] "

const defaultConcurrency = 4

// Assembler fetches a message and its attachments and produces a
// ForwardedEnvelope addressed to the fixed destination mailbox.
type Assembler struct {
	provider    provider.Client
	from        string
	to          string
	concurrency int
}

// New creates an Assembler. concurrency bounds parallel attachment
// downloads; values below 1 fall back to the default.
func New(client provider.Client, from, to string, concurrency int) *Assembler {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Assembler{
		provider:    client,
		from:        from,
		to:          to,
		concurrency: concurrency,
	}
}

// Assemble fetches the full message for the event's email id, downloads its
// attachments, and builds the forwarded envelope. Only the message fetch is
// fatal; a failed attachment listing degrades to "no attachments" and each
// failed download is dropped without aborting the rest.
func (a *Assembler) Assemble(ctx context.Context, event *models.InboundEvent) (*models.ForwardedEnvelope, error) {
	emailID := event.Data.EmailID

	msg, err := a.provider.GetMessage(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", emailID, err)
	}

	refs, err := a.provider.ListAttachments(ctx, emailID)
	if err != nil {
		// Treated as "no attachments" so a broken listing endpoint cannot
		// sink the forward. Logged so provider errors stay visible.
		logger.Logger.Warn("attachment listing failed, forwarding without attachments",
			zap.String("emailId", emailID),
			zap.Error(err))
		refs = nil
	}

	attachments := a.downloadAll(ctx, emailID, refs)

	return &models.ForwardedEnvelope{
		From:        a.from,
		To:          []string{a.to},
		Subject:     SubjectPrefix + event.Data.Subject,
		HTML:        buildHTMLBody(msg),
		Text:        buildTextBody(event, msg),
		Attachments: attachments,
	}, nil
}

// downloadAll fetches attachment contents with bounded concurrency. Results
// keep listing order; failed downloads leave a gap that is filtered out, so
// the final set is a subset of refs regardless of scheduling.
func (a *Assembler) downloadAll(ctx context.Context, emailID string, refs []models.AttachmentRef) []models.DownloadedAttachment {
	if len(refs) == 0 {
		return nil
	}

	results := make([]*models.DownloadedAttachment, len(refs))
	sem := make(chan struct{}, a.concurrency)

	var wg sync.WaitGroup
	wg.Add(len(refs))
	for i, ref := range refs {
		go func(i int, ref models.AttachmentRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := a.provider.DownloadAttachment(ctx, ref.DownloadURL)
			if err != nil {
				logger.Logger.Warn("attachment download failed, omitting from forward",
					zap.String("emailId", emailID),
					zap.String("attachmentId", ref.ID),
					zap.String("filename", ref.Filename),
					zap.Error(err))
				return
			}

			results[i] = &models.DownloadedAttachment{
				Filename: ref.Filename,
				Content:  base64.StdEncoding.EncodeToString(content),
			}
		}(i, ref)
	}
	wg.Wait()

	var downloaded []models.DownloadedAttachment
	for _, r := range results {
		if r != nil {
			downloaded = append(downloaded, *r)
		}
	}
	return downloaded
}

// buildHTMLBody applies the html > text > fallback precedence. A text-only
// message is converted by turning newlines into line breaks.
func buildHTMLBody(msg *models.FetchedMessage) string {
	switch {
	case msg.HTML != "":
		return msg.HTML
	case msg.Text != "":
		return strings.ReplaceAll(msg.Text, "\n", "<br/>")
	default:
		return FallbackBody
	}
}

// buildTextBody prefixes the plaintext body with a small traceability header
// block so the original sender and recipients survive plain-text viewing.
func buildTextBody(event *models.InboundEvent, msg *models.FetchedMessage) string {
	text := msg.Text
	if text == "" {
		text = FallbackBody
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", event.Data.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(event.Data.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\n\n", event.Data.Subject)
	b.WriteString(text)
	return b.String()
}
