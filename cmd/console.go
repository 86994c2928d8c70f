package cmd

import (
	"fmt"
	"strings"

	"avicbot/pkg/ui/console"

	"github.com/spf13/cobra"
)

const defaultConsoleSender = "viewer"

var consoleSender string

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Try the bot's replies locally without connecting",
	Long:  "Opens an interactive console that feeds typed lines through the same command and keyword table the bot uses in chat. Nothing is sent to Twitch.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := offlineConfig()
		session := console.Session{
			Sender:  resolveConsoleSender(consoleSender, cfg.Owner),
			Nick:    cfg.Nick,
			Channel: cfg.Channel,
		}

		if err := console.Run(runContext(cmd), newResponder(cfg).Dispatch, session); err != nil {
			return fmt.Errorf("console: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVar(&consoleSender, "as", "", "chat login to type as (default is the configured owner, or viewer)")
}

func resolveConsoleSender(flagValue string, owner string) string {
	if value := strings.TrimSpace(flagValue); value != "" {
		return value
	}
	if owner != "" {
		return owner
	}

	return defaultConsoleSender
}
