package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weeklybind/weeklybind/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("configuration failed")
		os.Exit(1)
	}

	if cfg.Verbose || cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when the edition yielded nothing usable,
		// 1 for everything else. Interrupt exits 1 without a partial file.
		if errors.Is(err, app.ErrIndexUnavailable) || errors.Is(err, app.ErrNoArticles) || errors.Is(err, app.ErrNoContent) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config) error {
	return app.New(cfg).Run(ctx)
}
