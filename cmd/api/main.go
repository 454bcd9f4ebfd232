package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/api/handlers"
	"github.com/dvloznov/techmart-analytics/internal/api/middleware"
	"github.com/dvloznov/techmart-analytics/internal/config"
	"github.com/dvloznov/techmart-analytics/internal/dataset"
	"github.com/dvloznov/techmart-analytics/internal/insights"
	"github.com/dvloznov/techmart-analytics/internal/jobs/inmemory"
	"github.com/dvloznov/techmart-analytics/internal/logger"
	"github.com/dvloznov/techmart-analytics/internal/source"
)

func main() {
	cfg := config.Load()

	// Parse command-line flags; environment values are the defaults.
	var (
		port      = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		src       = flag.String("source", cfg.Source, "Data source URI (or set TECHMART_SOURCE env)")
		table     = flag.String("table", cfg.Table, "Table for SQL and BigQuery sources (or set TECHMART_TABLE env)")
		ttl       = flag.Duration("cache-ttl", cfg.CacheTTL, "How long a loaded dataset is served (or set TECHMART_CACHE_TTL env)")
		logLevel  = flag.String("log-level", cfg.LogLevel, "Log level (or set LOG_LEVEL env)")
		logFormat = flag.String("log-format", cfg.LogFormat, "Log format: console or json (or set LOG_FORMAT env)")
	)
	flag.Parse()

	cfg.Port, cfg.Source, cfg.Table, cfg.CacheTTL = *port, *src, *table, *ttl
	cfg.LogLevel, cfg.LogFormat = *logLevel, *logFormat

	log, err := logger.NewFromConfig(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log = logger.New()
		log.Fatal().Err(err).Msg("Invalid logging configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Amounts are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := logger.WithContext(context.Background(), log)

	dataSource, err := source.Open(ctx, cfg.Source, source.Options{
		Table:       cfg.Table,
		HTTPTimeout: cfg.HTTPTimeout,
		NotionToken: cfg.NotionToken,
	})
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Source).Msg("Failed to open data source")
	}
	defer dataSource.Close()

	cache := dataset.NewCache(dataset.NewLoader(dataSource, log), cfg.CacheTTL, log)

	// Warm the cache; failures are reported per request.
	if rs, err := cache.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial dataset load failed")
	} else {
		log.Info().Int("rows", rs.Len()).Msg("Initial dataset loaded")
	}

	var summarizer insights.Summarizer
	if cfg.GeminiKey != "" {
		gs, err := insights.NewGeminiSummarizer(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("Insights disabled")
		} else {
			summarizer = gs
		}
	} else {
		log.Info().Msg("No GEMINI_API_KEY configured - insights will be disabled")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, handlers.RefreshJobHandler(cache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	mux := handlers.NewRouter(handlers.Deps{
		Data:       cache,
		Publisher:  jobQueue,
		JobStore:   jobStore,
		Summarizer: summarizer,
		Log:        log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Chain(mux, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("source", dataSource.Name()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for the in-flight refresh
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
