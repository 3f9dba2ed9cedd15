package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/walletchat/walletchat-server/internal/config"
	"github.com/walletchat/walletchat-server/internal/core"
	"github.com/walletchat/walletchat-server/internal/store"
	"github.com/walletchat/walletchat-server/internal/store/sqlite"
	transporthttp "github.com/walletchat/walletchat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	dedup           *core.Window
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.BadgeDBPath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.BadgeDBPath).Msg("badge store initialized")

	badges := core.NewBadgeDirectory(st, logger)
	if flags, err := st.ListBadges(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("failed to load persisted badges")
	} else {
		badges.Load(flags)
		logger.Info().Int("count", len(flags)).Msg("badges loaded")
	}

	dedup := core.NewWindow(cfg.DedupTTL)
	hub := core.NewHub(core.NewIdentityRegistry(), badges, dedup, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		dedup:           dedup,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup releases the dedup window and the badge store.
func (a *App) cleanup() {
	a.dedup.Stop()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
