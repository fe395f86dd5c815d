package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitekit/mailrelay/services/relay-service/internal/signature"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate relay configuration",
	Long:  "Checks that the configured secret, addresses and outbound backend are usable without starting the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := viper.GetString("webhook.secret")
		verifier, err := signature.NewVerifier(secret)
		if err != nil {
			return fmt.Errorf("webhook.secret is not a valid signing secret: %w", err)
		}
		if verifier.Enabled() {
			fmt.Println("✓ Webhook signature verification enabled")
		} else {
			fmt.Println("! Webhook signature verification disabled (no secret)")
		}

		from := viper.GetString("forward.from")
		to := viper.GetString("forward.to")
		if from == "" {
			return fmt.Errorf("forward.from not configured")
		}
		if to == "" {
			return fmt.Errorf("forward.to not configured")
		}
		fmt.Printf("✓ Forwarding %s -> %s\n", from, to)

		backend := viper.GetString("forward.backend")
		switch backend {
		case "", "provider":
			if viper.GetString("provider.api_key") == "" {
				fmt.Println("! provider.api_key not set")
			}
			fmt.Println("✓ Outbound backend: provider")
		case "sendgrid":
			if viper.GetString("sendgrid.api_key") == "" {
				return fmt.Errorf("sendgrid backend selected but sendgrid.api_key not configured")
			}
			fmt.Println("✓ Outbound backend: sendgrid")
		default:
			return fmt.Errorf("unknown forward backend: %q", backend)
		}

		fmt.Printf("✓ Provider API: %s\n", viper.GetString("provider.api_url"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
