package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/app"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcsuploader"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/ingest"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs/inmemory"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// The worker drains a fixed list of batch sources (local paths or gs:// URIs)
// through the job queue, retrying failed loads, and exits once all are done.
func main() {
	envFile := flag.String("env", "", "Path to .env file (default .env)")
	maxRetries := flag.Int("max-retries", jobs.DefaultMaxRetries, "Retries per batch")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := app.NewLogger(cfg)

	sources := flag.Args()
	if len(sources) == 0 {
		log.Fatal().Msg("Usage: worker [flags] SOURCE...")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repo.Close()

	analyzer, err := app.NewAnalyzer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize model")
	}
	processor := app.NewProcessor(cfg, analyzer, repo)

	var storage gcs.StorageService
	for _, src := range sources {
		if gcs.IsURI(src) {
			gcsService, err := gcsuploader.NewGCSStorageService(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create storage client")
			}
			defer gcsService.Close()
			storage = gcsService
			break
		}
	}

	// One worker: the progress tracker follows a single batch at a time.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(len(sources), 1, jobStore)
	ingester := ingest.NewIngester(processor, nil)

	if err := jobQueue.Start(ctx, ingester.JobHandler(storage)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	for _, src := range sources {
		job := &jobs.IngestBatchJob{Source: src, MaxRetries: *maxRetries}
		if err := jobQueue.PublishIngestBatch(ctx, job); err != nil {
			log.Fatal().Err(err).Str("source", src).Msg("Failed to enqueue batch")
		}
		log.Info().Str("job_id", job.JobID).Str("source", src).Msg("Batch enqueued")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

wait:
	for {
		select {
		case <-quit:
			log.Info().Msg("Interrupted, shutting down worker...")
			break wait
		case <-ticker.C:
			if allFinished(ctx, jobStore, len(sources)) {
				break wait
			}
		}
	}

	// Cancel context to stop workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	failed := reportJobs(shutdownCtx, log, jobStore)
	log.Info().Msg("Worker service exited")
	if failed > 0 {
		os.Exit(1)
	}
}

// allFinished reports whether every enqueued job reached a terminal state.
func allFinished(ctx context.Context, store jobs.JobStore, total int) bool {
	list, err := store.ListJobs(ctx, jobs.JobFilter{})
	if err != nil || len(list) < total {
		return false
	}
	for _, job := range list {
		if job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed {
			return false
		}
	}
	return true
}
