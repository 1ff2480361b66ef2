package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mzyui/poe-go/internal/client"
	"github.com/mzyui/poe-go/internal/config"
	"github.com/mzyui/poe-go/internal/metrics"
)

var (
	cfgPath string

	cfg    *config.Config
	logger zerolog.Logger
	rec    *metrics.Recorder
)

func main() {
	root := &cobra.Command{
		Use:           "poe",
		Short:         "Chat with Poe bots from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newChatCmd(),
		newHistoryCmd(),
		newExploreCmd(),
		newCategoriesCmd(),
		newBotCmd(),
		newUserCmd(),
		newSettingsCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func setup() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger

	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	rec = metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", rec.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}
	return nil
}

func newSession() (*client.Client, error) {
	return client.New(client.Auth{
		PB:      cfg.PB,
		PLat:    cfg.PLat,
		FormKey: cfg.FormKey,
	},
		client.WithBaseURL(cfg.BaseURL),
		client.WithLogger(logger),
		client.WithMetrics(rec),
	)
}
