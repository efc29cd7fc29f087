package main

import (
	"os"

	"chat-widget/internal/env"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "widget-host",
		Short: "Hosts embedded chat surfaces for renderer clients",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Load(); err != nil {
				return err
			}
			setupLogging(env.GetOrDefault(env.LogLevel, "info"))
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newURLCmd(), newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
