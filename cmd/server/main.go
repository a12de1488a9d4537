package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/menumetrics/menupricer/internal/api"
	"github.com/menumetrics/menupricer/internal/auth"
	"github.com/menumetrics/menupricer/internal/config"
	"github.com/menumetrics/menupricer/internal/database"
	"github.com/menumetrics/menupricer/internal/inference"
	"github.com/menumetrics/menupricer/internal/logging"
	"github.com/menumetrics/menupricer/internal/metrics"
	"github.com/menumetrics/menupricer/internal/pricing"
	"github.com/menumetrics/menupricer/internal/server"
)

func main() {
	// Optional .env for local development; env vars win.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting menupricer")

	logger.Info("connecting to database")
	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// Non-fatal to allow the app to start even if migrations fail
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	repo := database.NewPricingRepository(db)
	recorder := inference.NewRecorder(repo, logger)

	var completer pricing.Completer
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, using mock completer")
		// Without recommended_price the validator falls back to the
		// caller's current price.
		completer = pricing.NewMockCompleter(pricing.MockResponse{
			Content: `{"internal_weight": 0.6, "external_weight": 0.4, "reasoning": "Mock pricing response."}`,
		})
	} else {
		completer = pricing.NewOpenAIClient(cfg.OpenAI, logger)
		logger.Info("using openai completer", "model", cfg.OpenAI.Model)
	}

	engine := pricing.NewEngine(completer, cfg.Pricing, cfg.OpenAI, recorder, logger)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics collector", "error", err)
		os.Exit(1)
	}

	authConfig := auth.LoadConfigFromEnv()

	mux := http.NewServeMux()
	api.SetupRoutes(mux, api.RouterDeps{
		Engine:       engine,
		Store:        repo,
		Collector:    collector,
		AuthConfig:   authConfig,
		AIConfigured: cfg.OpenAI.APIKey != "",
		Location:     cfg.Pricing.DefaultLocation,
		Logger:       logger,
	})
	mux.Handle("/metrics", collector.Handler())

	handler := api.Recoverer(logger, collector.InstrumentHandler(mux))
	srv := server.New(cfg.Server, logger, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("received shutdown signal", "signal", sig.String())
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("menupricer stopped")
}
