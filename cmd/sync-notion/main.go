package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/app"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/notionsync"
)

func main() {
	// Parse CLI flags
	envFile := flag.String("env", "", "Path to .env file (default .env)")
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (default today)")
	notionToken := flag.String("notion-token", "", "Notion API token (default from NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (default from NOTION_DB_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := app.NewLogger(cfg)

	token := *notionToken
	if token == "" {
		token = cfg.NotionToken
	}
	dbID := *notionDBID
	if dbID == "" {
		dbID = cfg.NotionDBID
	}

	// Validate required flags
	if *startDateStr == "" {
		log.Fatal().Msg("Error: --start-date is required")
	}
	if token == "" {
		log.Fatal().Msg("Error: --notion-token or NOTION_TOKEN is required")
	}
	if dbID == "" {
		log.Fatal().Msg("Error: --notion-db-id or NOTION_DB_ID is required")
	}

	startDate, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}

	endDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *endDateStr != "" {
		endDate, err = time.Parse("2006-01-02", *endDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
		}
	}

	if endDate.Before(startDate) {
		log.Fatal().
			Time("start_date", startDate).
			Time("end_date", endDate).
			Msg("Error: end-date must be after start-date")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(token)

	result, err := notionsync.SyncTransactions(ctx, repo, notionClient, dbID, startDate, endDate, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d already present, %d archived, %d failed (of %d transactions).\n",
		result.Created, result.Skipped, result.Archived, result.Failed, result.Total)
}
