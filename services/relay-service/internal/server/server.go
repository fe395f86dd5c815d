// Package server wires the relay's HTTP surface: the webhook endpoint, its
// liveness probe, and a health check.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitekit/mailrelay/internal/logger"
	"github.com/sitekit/mailrelay/services/relay-service/internal/assemble"
	"github.com/sitekit/mailrelay/services/relay-service/internal/forward"
	"github.com/sitekit/mailrelay/services/relay-service/internal/signature"
)

// Server holds the relay's request-handling capabilities. Built once at
// startup and shared read-only across requests; handlers keep no per-request
// state of their own.
type Server struct {
	verifier  *signature.Verifier
	assembler *assemble.Assembler
	sender    forward.Sender
}

// New creates a Server from its three stages.
func New(verifier *signature.Verifier, assembler *assemble.Assembler, sender forward.Sender) *Server {
	return &Server{
		verifier:  verifier,
		assembler: assembler,
		sender:    sender,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/webhook/email", s.handleWebhook)
	r.GET("/webhook/email", s.handleWebhookProbe)

	return r
}

// requestLogger logs each request with latency and status.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
