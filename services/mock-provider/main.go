package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/sitekit/mailrelay/internal/models"
	"github.com/sitekit/mailrelay/services/mock-provider/internal/mock"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider API surface consumed by the relay
	r.GET("/emails/:id", handleGetEmail)
	r.GET("/emails/:id/attachments", handleListAttachments)
	r.GET("/attachments/:attachmentId/content", handleDownloadAttachment)
	r.POST("/emails", handleSendEmail)

	// Admin endpoints for seeding and inspecting test data
	admin := r.Group("/admin")
	{
		admin.POST("/emails", seedHandler(baseURL))
		admin.GET("/sent", handleListSent)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting mock provider API on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func handleGetEmail(c *gin.Context) {
	msg, ok := mock.GetEmail(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

func handleListAttachments(c *gin.Context) {
	refs, ok := mock.ListAttachments(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": refs})
}

func handleDownloadAttachment(c *gin.Context) {
	att, ok := mock.GetAttachment(c.Param("attachmentId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
		return
	}
	if att.FailStatus != 0 {
		c.JSON(att.FailStatus, gin.H{"error": "injected failure"})
		return
	}
	c.Data(http.StatusOK, att.Ref.ContentType, att.Content)
}

func handleSendEmail(c *gin.Context) {
	var envelope models.ForwardedEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := mock.RecordSent(envelope)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// seedRequest describes a message to preload into the mock store.
type seedRequest struct {
	From        string   `json:"from"`
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	HTML        string   `json:"html"`
	Text        string   `json:"text"`
	Attachments []struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		Content     string `json:"content"` // base64
		FailStatus  int    `json:"fail_status"`
	} `json:"attachments"`
}

func seedHandler(baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var attachments []mock.StoredAttachment
		for _, att := range req.Attachments {
			content, err := base64.StdEncoding.DecodeString(att.Content)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "attachment content must be base64"})
				return
			}
			attachments = append(attachments, mock.StoredAttachment{
				Ref: models.AttachmentRef{
					Filename:    att.Filename,
					ContentType: att.ContentType,
				},
				Content:    content,
				FailStatus: att.FailStatus,
			})
		}

		emailID := mock.SeedEmail(baseURL, models.FetchedMessage{
			From:    req.From,
			To:      req.To,
			Subject: req.Subject,
			HTML:    req.HTML,
			Text:    req.Text,
		}, attachments)

		c.JSON(http.StatusOK, gin.H{"email_id": emailID})
	}
}

func handleListSent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": mock.Sent()})
}
