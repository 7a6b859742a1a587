package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/talgurevich/hitquote-accounts/internal/adapter/repo"
	"github.com/talgurevich/hitquote-accounts/internal/db"
	"github.com/talgurevich/hitquote-accounts/internal/http/handlers"
	"github.com/talgurevich/hitquote-accounts/internal/http/httpapi"
	"github.com/talgurevich/hitquote-accounts/internal/identity"
	"github.com/talgurevich/hitquote-accounts/internal/infra"
	"github.com/talgurevich/hitquote-accounts/internal/link"
	"github.com/talgurevich/hitquote-accounts/internal/notify"
	"github.com/talgurevich/hitquote-accounts/internal/obs"
	"github.com/talgurevich/hitquote-accounts/internal/reconcile"
	"github.com/talgurevich/hitquote-accounts/internal/upgrade"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	obs.Init()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	identityClient, err := identity.NewClient(identity.Options{
		BaseURL:        cfg.IdentityStoreURL,
		ServiceKey:     cfg.IdentityServiceKey,
		RequestTimeout: cfg.IdentityTimeout,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure identity store client")
	}

	profiles := repo.NewProfileRepository(dbpool)
	memberships := repo.NewMembershipRepository(dbpool)
	requests := repo.NewUpgradeRequestRepository(dbpool)

	var sink notify.Sink
	if cfg.UpgradeWebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.UpgradeWebhookURL, nil)
	} else {
		logger.Info().Msg("UPGRADE_WEBHOOK_URL not set, notifications disabled")
	}
	dispatcher := notify.NewDispatcher(sink, 0, logger)
	defer dispatcher.Close()

	app := &handlers.App{
		Logger:     logger,
		Reconciler: reconcile.NewService(identityClient, profiles, requests, logger),
		Linker:     link.NewService(identityClient, logger),
		Upgrader:   upgrade.NewService(profiles, memberships, requests, dispatcher, logger),
	}

	router := httpapi.NewRouter(app, cfg.RateLimitPerMin)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
