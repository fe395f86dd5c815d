package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitekit/mailrelay/internal/logger"
	"github.com/sitekit/mailrelay/internal/models"
	"github.com/sitekit/mailrelay/services/relay-service/internal/signature"
)

// Signature triple headers set by the provider's webhook delivery system.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// handleWebhookProbe answers the provider's liveness check without touching
// the pipeline.
func (s *Server) handleWebhookProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// handleWebhook runs the full pipeline: gate, parse, type check, assemble,
// dispatch. Every branch terminates in exactly one response.
func (s *Server) handleWebhook(c *gin.Context) {
	traceID := c.GetHeader(HeaderID)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	log := logger.Logger.With(zap.String("traceId", traceID))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error("failed to read request body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid event payload"})
		return
	}

	err = s.verifier.Verify(body,
		c.GetHeader(HeaderID),
		c.GetHeader(HeaderTimestamp),
		c.GetHeader(HeaderSignature),
	)
	if err != nil {
		// The rejection reason is logged but never returned, so callers
		// cannot probe which check failed.
		if errors.Is(err, signature.ErrMissingHeaders) {
			log.Warn("webhook rejected: missing signature headers")
		} else {
			log.Warn("webhook rejected: invalid signature", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var event models.InboundEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to parse event payload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid event payload"})
		return
	}

	if !event.Relevant() {
		log.Info("ignoring event", zap.String("type", event.Type))
		c.JSON(http.StatusOK, gin.H{"message": "Event type not handled"})
		return
	}

	if event.Data.EmailID == "" {
		log.Error("event is missing email id")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid event payload"})
		return
	}

	log = log.With(zap.String("emailId", event.Data.EmailID))

	envelope, err := s.assembler.Assemble(c.Request.Context(), &event)
	if err != nil {
		log.Error("failed to assemble forward", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch email"})
		return
	}

	sentID, err := s.sender.Send(c.Request.Context(), envelope)
	if err != nil {
		log.Error("failed to dispatch forward",
			zap.String("backend", s.sender.Name()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to forward email"})
		return
	}

	log.Info("forwarded email",
		zap.String("backend", s.sender.Name()),
		zap.String("sentId", sentID),
		zap.Int("attachments", len(envelope.Attachments)),
	)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
