package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"avicbot/pkg/channel/twitch"
	"avicbot/pkg/config"
	"avicbot/pkg/gateway"
	"avicbot/pkg/logger"
	"avicbot/pkg/metrics"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Join the configured channel and answer chat",
	Long:  "Connects to Twitch chat, joins the configured channel and replies to commands and keywords until asked to leave.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.run")

		runCtx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := newService(cfg, log)
		if err != nil {
			log.Error("Failed to initialize bot", "error", err)
			return err
		}

		log.Info("Bot starting", "server", cfg.Server, "channel", cfg.Channel, "nick", cfg.Nick, "owner", cfg.Owner)
		if err := svc.Run(runCtx); err != nil {
			log.Error("Bot stopped", "error", err)
			return err
		}

		log.Info("Bot stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func newService(cfg *config.Config, log *slog.Logger) (*gateway.Service, error) {
	adapter, err := twitch.NewAdapter(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure twitch channel: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Status.Enabled {
		m = metrics.New()
	}

	return gateway.NewService(cfg, newResponder(cfg), adapter, m, log)
}

// runContext is the command context, or Background when run outside cobra.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
