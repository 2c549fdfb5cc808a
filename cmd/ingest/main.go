package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/app"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcsuploader"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/ingest"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

func main() {
	// Parse CLI flags
	envFile := flag.String("env", "", "Path to .env file (default .env)")
	source := flag.String("source", "", "JSON batch to ingest: local path or gs://bucket/object (required)")
	pause := flag.Duration("pause", ingest.DefaultPause, "Delay between records")
	quiet := flag.Bool("quiet", false, "Disable the progress bar")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := app.NewLogger(cfg)

	if *source == "" {
		log.Fatal().Msg("Error: --source is required")
	}

	// Interrupts stop the batch between records
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	var storage gcs.StorageService
	if gcs.IsURI(*source) {
		gcsService, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer gcsService.Close()
		storage = gcsService
	}

	data, err := ingest.Load(ctx, *source, storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load batch")
	}
	entries, err := ingest.DecodeBatch(data)
	if err != nil {
		log.Fatal().Err(err).Str("source", *source).Msg("Invalid batch")
	}

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

	opts := []ingest.Option{ingest.WithPause(*pause)}
	if !*quiet {
		bar := newProgressBar(len(entries))
		opts = append(opts, ingest.WithObserver(func(i int, out domain.Outcome) {
			_ = bar.Add(1)
		}))
	}
	ingester := ingest.NewIngester(processor, nil, opts...)

	log.Info().Str("source", *source).Int("records", len(entries)).Msg("Starting ingestion")
	start := time.Now()

	summary, err := ingester.ProcessBatch(ctx, data)
	if summary != nil {
		fmt.Fprintf(os.Stderr, "\nProcessed %d/%d records in %s: %d succeeded, %d duplicates, %d failed\n",
			summary.Processed, summary.Total, time.Since(start).Round(time.Millisecond),
			summary.Succeeded, summary.Duplicates, summary.Failed)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Analyzing messages...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
