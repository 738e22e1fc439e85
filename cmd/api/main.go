package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingrisk/internal/api"
	"bookingrisk/internal/config"
	"bookingrisk/internal/domain"
	"bookingrisk/internal/events"
	"bookingrisk/internal/logging"
	"bookingrisk/internal/metrics"
	"bookingrisk/internal/pipeline"
	"bookingrisk/internal/repository"
	"bookingrisk/internal/service"
	"bookingrisk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	loader, err := loadModel(cfg, &logger)
	if err != nil {
		return err
	}
	classifier, _ := loader.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}
	stateRepo := initStateRepository(cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	subscribePredictionEvents(eventBus, &logger)

	predictor, err := service.NewPredictionService(classifier, eventBus, cfg.Cache.Size, &logger)
	if err != nil {
		return fmt.Errorf("init prediction service: %w", err)
	}
	forms := service.NewFormStateService(stateRepo, &logger)

	httpServer := api.NewHTTPServer(cfg.HTTP, cfg.Session, api.Deps{
		Predictor: predictor,
		Forms:     forms,
		Limits:    stateRepo,
		Ready:     loader.Loaded,
		Logger:    &logger,
	})

	var grpcServer *api.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.GRPC, loader.Loaded, &logger)
		if err != nil {
			return fmt.Errorf("create grpc server: %w", err)
		}
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, httpServer, grpcServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadModel reads the pipeline artifact once. The service does not start without it.
func loadModel(cfg *config.Config, logger *zerolog.Logger) (*pipeline.Loader, error) {
	path, err := pipeline.ResolvePath(cfg.Model.Path)
	if err != nil {
		return nil, err
	}

	loader := pipeline.NewLoader(path, logger)
	if _, err := loader.Get(); err != nil {
		return nil, fmt.Errorf("load model %s: %w", loader.Path(), err)
	}
	metrics.IncModelLoad()
	logger.Info().Str("model_path", loader.Path()).Int("loads", loader.Loads()).Msg("model ready")
	return loader, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, form state kept in memory")
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	policy := worker.RetryPolicy{
		MaxRetries:    cfg.Redis.MaxRetries,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2,
	}

	err := worker.Retry(ctx, policy, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return repository.Ping(pingCtx, redisClient)
	}, func(attempt int, delay time.Duration, err error) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("redis ping failed")
	})
	if err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(redisClient)
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initStateRepository(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.FormStateRepository {
	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	memory := repository.NewMemoryFormStateRepository(ttl)
	if redisClient == nil {
		return memory
	}

	repoLogger := logger.With().Str("component", "form-state").Logger()
	return repository.NewFailoverFormStateRepository(
		repository.NewRedisFormStateRepository(redisClient, ttl),
		memory,
		&repoLogger,
	)
}

func subscribePredictionEvents(bus *events.EventBus, logger *zerolog.Logger) {
	eventLogger := logger.With().Str("component", "events").Logger()

	bus.Subscribe(events.EventPredictionMade, func(ev *events.Event) error {
		var payload events.PredictionEventPayload
		if err := ev.Decode(&payload); err != nil {
			eventLogger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		eventLogger.Info().
			Str("event_id", ev.ID).
			Str("prediction_id", payload.PredictionID).
			Str("verdict", payload.Verdict).
			Float64("probability", payload.Probability).
			Bool("cache_hit", payload.CacheHit).
			Msg("prediction served")
		return nil
	})

	bus.Subscribe(events.EventPredictionFailed, func(ev *events.Event) error {
		var payload events.PredictionEventPayload
		if err := ev.Decode(&payload); err != nil {
			eventLogger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		eventLogger.Warn().
			Str("event_id", ev.ID).
			Str("error", payload.Error).
			Msg("prediction failed")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	httpServer *api.HTTPServer,
	grpcServer *api.GRPCServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	logger.Info().Int("http_port", cfg.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
