package notionsync

import (
	"context"
	"time"

	"github.com/jomei/notionapi"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// NotionService is the slice of the Notion API a sync needs.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryPages returns the rows after cursor; an empty cursor starts from the beginning.
	QueryPages(ctx context.Context, databaseID string, cursor notionapi.Cursor) (*notionapi.DatabaseQueryResponse, error)

	ArchivePage(ctx context.Context, pageID string) error
}

// TransactionSource supplies the transactions to export.
type TransactionSource interface {
	ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]store.TransactionView, error)
}
