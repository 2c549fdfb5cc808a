// Package notionsync exports parsed transactions to a Notion database.
package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

const (
	// BatchSize defines the number of transactions to process in a single batch
	BatchSize = 100

	queryPageSize = 100
)

// SyncResult counts what a sync did, or would do in a dry run.
type SyncResult struct {
	Total    int
	Created  int
	Skipped  int
	Archived int
	Failed   int
}

// SyncTransactions mirrors the transactions dated within [startDate, endDate]
// into a Notion database. Pages are matched on the Transaction ID property:
// existing ones are left alone, missing ones are created and pages whose
// transaction is no longer in the range are archived.
func SyncTransactions(ctx context.Context, src TransactionSource, notionClient NotionService, notionDBID string, startDate, endDate time.Time, dryRun bool) (*SyncResult, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Time("start_date", startDate).
		Time("end_date", endDate).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := src.ListTransactionsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("SyncTransactions: querying transactions: %w", err)
	}
	log.Info().Int("transaction_count", len(transactions)).Msg("Retrieved transactions")

	valid := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		valid[tx.TransactionID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return nil, fmt.Errorf("SyncTransactions: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	result := &SyncResult{Total: len(transactions)}
	existing := make(map[string]bool, len(notionPages))

	for _, page := range notionPages {
		txID := extractTransactionID(page)
		if txID != "" && valid[txID] {
			existing[txID] = true
			continue
		}

		pageLog := log.With().Str("transaction_id", txID).Str("page_id", string(page.ID)).Logger()
		if dryRun {
			pageLog.Info().Msg("[DRY RUN] Would archive stale Notion page")
			result.Archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
			pageLog.Warn().Err(err).Msg("Failed to archive stale Notion page")
			result.Failed++
			continue
		}
		pageLog.Debug().Msg("Archived stale Notion page")
		result.Archived++
	}

	for i := 0; i < len(transactions); i += BatchSize {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("SyncTransactions: %w", err)
		}

		end := min(i+BatchSize, len(transactions))
		log.Info().
			Int("batch_start", i).
			Int("batch_end", end).
			Msg("Processing batch")

		for _, tx := range transactions[i:end] {
			if existing[tx.TransactionID] {
				result.Skipped++
				continue
			}

			if dryRun {
				log.Info().Str("transaction_id", tx.TransactionID).Msg("[DRY RUN] Would create new Notion page")
				result.Created++
				continue
			}

			page, err := notionClient.CreatePage(ctx, notionDBID, TransactionToNotionProperties(tx))
			if err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.TransactionID).Msg("Failed to create Notion page")
				result.Failed++
				continue
			}
			log.Debug().
				Str("transaction_id", tx.TransactionID).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			result.Created++
		}
	}

	log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("archived", result.Archived).
		Int("failed", result.Failed).
		Int("total", result.Total).
		Msg("Transaction sync completed")

	return result, nil
}

// queryAllNotionPages follows the query cursor until the database is exhausted.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		resp, err := notionClient.QueryPages(ctx, databaseID, cursor)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}
