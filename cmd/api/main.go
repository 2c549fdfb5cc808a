package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/handlers"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/middleware"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/app"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcsuploader"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/ingest"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs/inmemory"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env", "", "Path to .env file (default .env)")
		port    = flag.String("port", "", "HTTP server port (overrides PORT)")
		bucket  = flag.String("bucket", "", "GCS bucket for archiving uploaded batches (overrides GCS_BUCKET)")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *bucket != "" {
		cfg.GCSBucket = *bucket
	}

	log := app.NewLogger(cfg)
	ctx := logger.WithContext(context.Background(), log)

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repo.Close()
	log.Info().Str("backend", cfg.StorageBackend).Msg("Storage ready")

	analyzer, err := app.NewAnalyzer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize model")
	}
	processor := app.NewProcessor(cfg, analyzer, repo)

	var storage gcs.StorageService
	if cfg.GCSBucket != "" {
		gcsService, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer gcsService.Close()
		storage = gcsService
	} else {
		log.Warn().Msg("No GCS bucket configured - uploaded batches will not be archived")
	}

	// A single worker keeps batches sequential, matching the one-batch-at-a-time tracker.
	tracker := jobs.NewProgressTracker(nil)
	ingester := ingest.NewIngester(processor, tracker)
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 1, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, ingester.JobHandler(storage)); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	h := &handlers.Handlers{
		System:    handlers.NewSystemHandler(repo, analyzer.Available()),
		Messages:  handlers.NewMessagesHandler(processor, repo),
		Batches:   handlers.NewBatchHandler(tracker, jobQueue, storage, cfg.GCSBucket),
		Customers: handlers.NewCustomersHandler(repo),
		Analytics: handlers.NewAnalyticsHandler(repo),
		Jobs:      handlers.NewJobsHandler(jobStore),
	}

	mux := http.NewServeMux()
	h.Register(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				corsHandler.Handler(
					middleware.Auth(cfg.APIToken, handlers.PublicPaths...)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Cancelling the worker context stops the running batch between records.
	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
