package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitekit/mailrelay/internal/logger"
	"github.com/sitekit/mailrelay/services/relay-service/internal/assemble"
	"github.com/sitekit/mailrelay/services/relay-service/internal/forward"
	"github.com/sitekit/mailrelay/services/relay-service/internal/provider"
	"github.com/sitekit/mailrelay/services/relay-service/internal/server"
	"github.com/sitekit/mailrelay/services/relay-service/internal/signature"
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Mailrelay webhook relay service",
	Long:  "Receives inbound email webhooks, fetches the full message and forwards a copy to a fixed mailbox",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the webhook relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetLevel(viper.GetString("log.level"))
		gin.SetMode(viper.GetString("gin.mode"))

		srv, err := buildServer()
		if err != nil {
			return err
		}

		httpSrv := &http.Server{
			Addr:              viper.GetString("server.addr"),
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errChan := make(chan error, 1)
		go func() {
			logger.Logger.Info("relay server starting", zap.String("addr", httpSrv.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errChan:
			return err
		case <-sigChan:
			logger.Logger.Info("shutting down gracefully")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			logger.Logger.Info("server stopped")
			return nil
		}
	},
}

// buildServer constructs the immutable capability handle shared by all
// requests: verifier, provider client, assembler and sender.
func buildServer() (*server.Server, error) {
	verifier, err := signature.NewVerifier(viper.GetString("webhook.secret"))
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	if !verifier.Enabled() {
		logger.Logger.Warn("webhook signature verification disabled: no secret configured")
	}

	from := viper.GetString("forward.from")
	to := viper.GetString("forward.to")
	if from == "" || to == "" {
		return nil, fmt.Errorf("forward.from and forward.to must be configured")
	}

	client := provider.NewHTTPClient()
	assembler := assemble.New(client, from, to, viper.GetInt("downloads.concurrency"))

	sender, err := buildSender(client)
	if err != nil {
		return nil, err
	}
	logger.Logger.Info("outbound backend selected", zap.String("backend", sender.Name()))

	return server.New(verifier, assembler, sender), nil
}

func buildSender(client provider.Client) (forward.Sender, error) {
	backend := viper.GetString("forward.backend")
	switch backend {
	case "", "provider":
		return forward.NewProviderSender(client), nil
	case "sendgrid":
		apiKey := viper.GetString("sendgrid.api_key")
		if apiKey == "" {
			return nil, fmt.Errorf("sendgrid.api_key not configured")
		}
		return forward.NewSendGridSender(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown forward backend: %q", backend)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().String("server.addr", ":8080", "HTTP listen address")
	rootCmd.PersistentFlags().String("webhook.secret", "", "Webhook signing secret (empty disables verification)")
	rootCmd.PersistentFlags().String("forward.from", "", "Fixed sender address for forwarded mail")
	rootCmd.PersistentFlags().String("forward.to", "", "Destination mailbox for forwarded mail")
	rootCmd.PersistentFlags().String("forward.backend", "provider", "Outbound backend: 'provider' or 'sendgrid'")
	rootCmd.PersistentFlags().String("sendgrid.api_key", "", "SendGrid API key (sendgrid backend only)")
	rootCmd.PersistentFlags().String("provider.api_url", "https://api.resend.com", "Provider API base URL")
	rootCmd.PersistentFlags().String("provider.api_key", "", "Provider API key")
	rootCmd.PersistentFlags().Int("provider.timeout_seconds", 15, "Timeout for provider API calls")
	rootCmd.PersistentFlags().Int("downloads.concurrency", 4, "Concurrent attachment downloads per request")
	rootCmd.PersistentFlags().Int("downloads.timeout_seconds", 30, "Timeout per attachment download")
	rootCmd.PersistentFlags().String("log.level", "info", "Log level")
	rootCmd.PersistentFlags().String("gin.mode", "release", "Gin mode")

	// Bind flags to viper
	for _, key := range []string{
		"server.addr",
		"webhook.secret",
		"forward.from",
		"forward.to",
		"forward.backend",
		"sendgrid.api_key",
		"provider.api_url",
		"provider.api_key",
		"provider.timeout_seconds",
		"downloads.concurrency",
		"downloads.timeout_seconds",
		"log.level",
		"gin.mode",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}

	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./services/relay-service")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
