package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/command"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/enrich"
	"github.com/vovakirdan/chatrelay/internal/genrelay"
	transporthttp "github.com/vovakirdan/chatrelay/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	cache           *enrich.RedisCache
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	var provider enrich.Provider = enrich.NewFallback(
		enrich.NewXXAPIClient(cfg.Enrich.BaseURL, cfg.Enrich.APIKey, cfg.Enrich.Timeout),
		enrich.NewSynthetic(time.Now, time.Now().UnixNano()),
		logger,
	)

	var cache *enrich.RedisCache
	if cfg.Cache.RedisURL != "" {
		c, err := enrich.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.ForecastTTL, provider, logger)
		if err != nil {
			return nil, fmt.Errorf("init forecast cache: %w", err)
		}
		cache = c
		provider = c
		logger.Info().Dur("ttl", cfg.Cache.ForecastTTL).Msg("forecast cache enabled")
	}

	dispatcher := command.New(provider,
		command.WithParserURL(cfg.Movie.ParserURL),
		command.WithLogger(logger),
	)
	hub := core.NewHub(core.NewRegistry(), dispatcher, logger, core.WithWelcome(cfg.WelcomeText))

	relay := genrelay.New(genrelay.Config{
		APIKey:       cfg.AI.APIKey,
		BaseURL:      cfg.AI.BaseURL,
		Model:        cfg.AI.Model,
		SystemPrompt: cfg.AI.SystemPrompt,
	}, genrelay.NewOpenAIProvider(), logger)
	if cfg.AI.APIKey == "" {
		logger.Warn().Msg("ai.api_key is empty, /ai/stream will report a configuration error")
	}

	server := transporthttp.NewServer(hub, relay, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		cache:           cache,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	// Hijacked websocket connections are not tracked by server.Shutdown;
	// the hub closes them when ctx ends.
	go a.hub.Run(ctx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
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

// cleanup closes the forecast cache and other resources.
func (a *App) cleanup() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close forecast cache")
		} else {
			a.log.Info().Msg("forecast cache closed")
		}
	}
}
