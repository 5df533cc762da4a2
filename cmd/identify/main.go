package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/elabx-org/identify/internal/api"
	"github.com/elabx-org/identify/internal/audit"
	"github.com/elabx-org/identify/internal/config"
	"github.com/elabx-org/identify/internal/metrics"
	"github.com/elabx-org/identify/internal/provider"
	"github.com/elabx-org/identify/internal/secrets"
	"github.com/elabx-org/identify/internal/tracing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(os.Getenv("IDENTIFY_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.Log.Level).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The Google Plus key may be an op:// reference; resolve it once at startup.
	src, err := secrets.FromConfig(ctx, cfg.OnePassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize 1password client")
	}
	apiKey, err := secrets.Expand(ctx, src, cfg.Providers.GooglePlus.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve google plus api key")
	}
	if apiKey == "" {
		log.Warn().Msg("IDENTIFY_GOOGLE_PLUS_KEY not set, google plus enrichment disabled")
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	m := metrics.New()
	mgr := provider.FromConfig(cfg, apiKey).WithObserver(m)
	log.Info().Strs("providers", mgr.Names()).Msg("provider chain initialized")

	srv := api.NewServer(cfg, mgr)
	srv.SetMetrics(m)

	// Wire auditor
	if cfg.Audit.Enabled && cfg.Audit.Path != "" {
		auditor, err := audit.New(cfg.Audit.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Audit.Path).Msg("failed to initialize auditor")
		}
		defer auditor.Close()
		if n, err := auditor.Prune(cfg.Audit.RetentionDays); err != nil {
			log.Warn().Err(err).Msg("audit prune failed")
		} else if n > 0 {
			log.Info().Int("removed", n).Msg("audit log pruned")
		}
		srv.SetAuditor(auditor)
		log.Info().Str("path", cfg.Audit.Path).Msg("auditor initialized")
	}

	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}
