package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/govhotline/backend/internal/ai"
	"github.com/govhotline/backend/internal/analysis"
	"github.com/govhotline/backend/internal/config"
	"github.com/govhotline/backend/internal/db"
	"github.com/govhotline/backend/internal/geocode"
	httpapi "github.com/govhotline/backend/internal/http"
	"github.com/govhotline/backend/internal/http/handlers"
	"github.com/govhotline/backend/internal/logging"
	"github.com/govhotline/backend/internal/metrics"
	"github.com/govhotline/backend/internal/service"
)

func setup() (config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer := logging.New(logging.Options{
		Level: cfg.LogLevel,
		Debug: cfg.Debug,
		File:  cfg.LogFile,
	})
	return cfg, logger, func() { _ = closer.Close() }, nil
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*db.Store, error) {
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info().Str("backend", store.Backend()).Msg("database ready")
	return store, nil
}

func runMigrate(ctx context.Context) error {
	cfg, logger, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	store.Close()
	return nil
}

// completer picks the upstream transport; without credentials every call takes the fallback path.
func completer(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.Completer, func()) {
	if !cfg.AIEnabled() {
		logger.Warn().Msg("QIANFAN_AK not set, model analysis runs in fallback-only mode")
		return &ai.MockCompleter{}, func() {}
	}
	var c ai.Completer = ai.NewOpenAICompleter(ai.OpenAIConfig{
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		AccessKey: cfg.QianfanAK,
		SecretKey: cfg.QianfanSK,
		Timeout:   cfg.AITimeout,
	})
	logger.Info().Str("model", cfg.AIModel).Str("base_url", cfg.AIBaseURL).Msg("model client configured")

	if cfg.RedisURL == "" {
		return c, func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	cache, err := ai.NewRedisCache(pingCtx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("completion cache disabled")
		return c, func() {}
	}
	logger.Info().Dur("ttl", cfg.AICacheTTL).Msg("completion cache enabled")
	return ai.CachedCompleter{Next: c, Cache: cache, TTL: cfg.AICacheTTL, Logger: logger}, func() { _ = cache.Close() }
}

func runServe(ctx context.Context) error {
	cfg, logger, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open store")
		return err
	}
	defer store.Close()

	upstream, closeUpstream := completer(ctx, cfg, logger)
	defer closeUpstream()
	an := analysis.NewService(upstream, cfg.AITimeout, logger)

	var resolver geocode.Resolver
	if cfg.GeocoderURL != "" {
		resolver = &geocode.NominatimGeocoder{
			BaseURL:   cfg.GeocoderURL,
			UserAgent: cfg.GeocoderUserAgent,
			Language:  "zh-CN",
		}
		logger.Info().Str("url", cfg.GeocoderURL).Msg("geocoder enabled")
	}

	h := &handlers.Handler{
		Store: store,
		Tickets: &service.TicketService{
			Store:       store,
			Analysis:    an,
			Geocoder:    resolver,
			GeocodeCity: cfg.GeocoderCity,
			Logger:      logger,
		},
		Analytics: &service.AnalyticsService{Store: store, Analysis: an},
		Analysis:  an,
		Validator: validator.New(),
		Logger:    logger,
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.Router(cfg, h, logger),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
	return nil
}
