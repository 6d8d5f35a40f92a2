package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kpavlov42/placeradar/internal/cache/disk"
	"github.com/kpavlov42/placeradar/internal/config"
	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/metrics"
	"github.com/kpavlov42/placeradar/internal/places/google"
	"github.com/kpavlov42/placeradar/internal/repository"
	"github.com/kpavlov42/placeradar/internal/repository/jsonfile"
	"github.com/kpavlov42/placeradar/internal/repository/postgres"
	"github.com/kpavlov42/placeradar/internal/server"
	"github.com/kpavlov42/placeradar/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	placesClient := google.New(google.Config{
		APIKey:  cfg.Google.APIKey,
		BaseURL: cfg.Google.BaseURL,
		Timeout: cfg.Google.Timeout,
	}, logger)

	cache, err := disk.New(disk.Config{Dir: cfg.Cache.Dir, TTL: cfg.Cache.TTL}, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	tally := costs.NewTally()

	aggregator := service.NewAggregator(service.AggregatorDeps{
		Places:  placesClient,
		Cache:   cache,
		Tally:   tally,
		Logger:  logger,
		Metrics: m,
		Config: service.AggregatorConfig{
			RadiusMeters:     cfg.Search.RadiusMeters,
			PageInterval:     cfg.Intervals.Page,
			CategoryInterval: cfg.Intervals.Category,
		},
	})
	merger := service.NewMerger(store, logger, m)

	srv := server.New(server.Deps{
		Aggregator: aggregator,
		Merger:     merger,
		Places:     placesClient,
		Store:      store,
		Tally:      tally,
		Metrics:    m,
		Logger:     logger,
	})

	router := chi.NewRouter()
	router.Mount("/", srv.Router())
	router.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Server.BindAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", cfg.Server.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newStore(ctx context.Context, cfg *config.Config) (repository.BusinessStore, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewBusinessRepo(db), db.Close, nil
	default:
		return jsonfile.New(cfg.Store.OutputPath), func() {}, nil
	}
}
