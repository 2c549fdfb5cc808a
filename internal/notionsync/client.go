package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

// RequestsPerSecond is the average request rate Notion allows one integration.
const RequestsPerSecond = 3

// NotionClient talks to one Notion workspace. Every request waits on a shared
// limiter so long syncs stay under Notion's rate limit instead of collecting 429s.
type NotionClient struct {
	api     *notionapi.Client
	limiter *rate.Limiter
}

var _ NotionService = (*NotionClient)(nil)

// NewNotionClient returns a client authenticated with an integration token.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		api:     notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(rate.Limit(RequestsPerSecond), 1),
	}
}

func (n *NotionClient) wait(ctx context.Context, op string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreatePage adds a transaction row to databaseID.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if err := n.wait(ctx, "CreatePage"); err != nil {
		return nil, err
	}
	parent := notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(databaseID)}
	page, err := n.api.Page.Create(ctx, &notionapi.PageCreateRequest{Parent: parent, Properties: properties})
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}
	return page, nil
}

// QueryPages returns one page of rows from databaseID, starting at cursor
// (empty for the first page).
func (n *NotionClient) QueryPages(ctx context.Context, databaseID string, cursor notionapi.Cursor) (*notionapi.DatabaseQueryResponse, error) {
	if err := n.wait(ctx, "QueryPages"); err != nil {
		return nil, err
	}
	resp, err := n.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
		StartCursor: cursor,
		PageSize:    queryPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("QueryPages: %w", err)
	}
	return resp, nil
}

// ArchivePage moves pageID to the trash; the Notion API has no hard delete.
func (n *NotionClient) ArchivePage(ctx context.Context, pageID string) error {
	if err := n.wait(ctx, "ArchivePage"); err != nil {
		return err
	}
	if _, err := n.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Archived: true}); err != nil {
		return fmt.Errorf("ArchivePage: %w", err)
	}
	return nil
}
