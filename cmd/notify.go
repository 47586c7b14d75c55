package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-agency/internal/notification"
	"github.com/frahmantamala/travel-agency/pkg/logger"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification delivery commands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message through the mail provider",
	Long:  `Send one templated message synchronously to check the provider configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
		log := logger.LoggerWrapper()

		client := newNotificationClient(cfg.Notification, log)
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Notification.Timeout+5*time.Second)
		defer cancel()

		params := map[string]interface{}{
			"accept_url":  cfg.Invitation.AcceptURL + "?token=test",
			"expires_at":  time.Now().Add(cfg.Invitation.TTL).UTC().Format(time.RFC3339),
			"role_name":   "Prueba",
			"tenant_name": "Prueba",
		}
		if err := client.Send(ctx, notifyTemplate, notifyTo, params); err != nil {
			return fmt.Errorf("send test notification: %w", err)
		}
		fmt.Printf("Sent %s to %s\n", notifyTemplate, notifyTo)
		return nil
	},
}

var (
	notifyTo       string
	notifyTemplate string
)

func init() {
	notifyTestCmd.Flags().StringVar(&notifyTo, "to", "", "Recipient address")
	notifyTestCmd.Flags().StringVar(&notifyTemplate, "template", notification.TemplateInvitationIssued, "Template id")
	_ = notifyTestCmd.MarkFlagRequired("to")

	notifyCmd.AddCommand(notifyTestCmd)
}
