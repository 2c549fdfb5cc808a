package notionsync

import (
	"context"
	"errors"
	"testing"
)

func TestNotionClient_CancelledContext(t *testing.T) {
	client := NewNotionClient("secret_test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.CreatePage(ctx, "db", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("CreatePage error = %v, want context.Canceled", err)
	}
	if _, err := client.QueryPages(ctx, "db", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("QueryPages error = %v, want context.Canceled", err)
	}
	if err := client.ArchivePage(ctx, "page"); !errors.Is(err, context.Canceled) {
		t.Errorf("ArchivePage error = %v, want context.Canceled", err)
	}
}

func TestNotionClient_Limiter(t *testing.T) {
	client := NewNotionClient("secret_test")
	if got := float64(client.limiter.Limit()); got != RequestsPerSecond {
		t.Errorf("limit = %v, want %v", got, float64(RequestsPerSecond))
	}
	if got := client.limiter.Burst(); got != 1 {
		t.Errorf("burst = %d, want 1", got)
	}
}
