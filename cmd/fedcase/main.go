package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fedcase/internal/access"
	"fedcase/internal/bot"
	"fedcase/internal/cases"
	"fedcase/internal/config"
	"fedcase/internal/gateway/telegram"
	"fedcase/internal/notify"
	"fedcase/internal/store/boltstore"
	"fedcase/internal/store/jsonstore"
	"fedcase/internal/store/sqlstore"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fedcase",
		Usage: "moderation case-tracking bot for federation reports and appeals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to TOML config file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("fedcase failed")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	setupLogging(cfg)
	log.Info().Msg("Starting Covalent Federation Bot")

	db, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open store")
	}
	defer db.Close()

	log.Info().
		Str("backend", cfg.Store.Backend).
		Str("path", cfg.Store.Path).
		Msg("Store opened")

	// A corrupt store must refuse to start rather than run on
	// partial data.
	ctrl, err := cases.NewController(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load state, refusing to start")
	}

	gw, err := telegram.New(telegram.Options{
		Token:       cfg.Bot.Token,
		EvidenceDir: cfg.Store.EvidenceDir,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram gateway")
	}

	dispatcher := notify.NewDispatcher(gw, cfg.Broadcast.Concurrency)
	policy := access.Policy{OwnerID: cfg.Bot.OwnerID}
	b := bot.New(gw, ctrl, cases.NewDraftManager(), policy, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen)
	}

	log.Info().Int64("owner_id", cfg.Bot.OwnerID).Msg("Bot running")

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	log.Info().Msg("Shutting down")
	return nil
}

func setupLogging(cfg *config.Config) {
	switch cfg.Log.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if cfg.Log.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

func openStore(cfg *config.Config) (cases.Store, error) {
	switch cfg.Store.Backend {
	case "bolt":
		return boltstore.Open(boltstore.Options{Path: cfg.Store.Path})
	case "sqlite":
		return sqlstore.Open(cfg.Store.Path)
	default:
		return jsonstore.Open(cfg.Store.Path)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info().Str("address", addr).Msg("Metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics endpoint failed")
	}
}
