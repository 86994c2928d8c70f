/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"strings"

	"avicbot/pkg/config"
	"avicbot/pkg/responder"

	"github.com/spf13/cobra"
)

const (
	defaultOfflineNick    = "avicbot"
	defaultOfflineChannel = "#avicbot"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "avicbot",
	Short: "A scripted Twitch chat bot",
	Long: `avicbot joins one Twitch channel and answers chat with scripted replies.

Lines starting with a known !command run that command; otherwise the first
keyword found anywhere in the line picks a canned response. Everything else
is ignored.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $AVICBOT_CONFIG, ./config.json or ./config.yaml)")
}

// loadConfig reads the config named by --config, or the default search path.
func loadConfig() (*config.Config, error) {
	if path := strings.TrimSpace(configPath); path != "" {
		return config.LoadFile(path)
	}

	return config.LoadConfig()
}

// offlineConfig loads the config for commands that never connect. Missing
// credentials are fine there, so only identity fields get defaults.
func offlineConfig() *config.Config {
	cfg := config.LoadLocal(strings.TrimSpace(configPath))
	if cfg.Nick == "" {
		cfg.Nick = defaultOfflineNick
	}
	if cfg.Channel == "" {
		cfg.Channel = defaultOfflineChannel
	}

	return cfg
}

func newResponder(cfg *config.Config) *responder.Responder {
	table := responder.Defaults(responder.Settings{
		Nick:    cfg.Nick,
		Channel: cfg.Channel,
	})

	return responder.New(table, cfg.Owner)
}
