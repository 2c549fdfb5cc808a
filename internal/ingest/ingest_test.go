package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
)

type mockProcessor struct {
	mu       sync.Mutex
	requests []pipeline.Request
	fn       func(req pipeline.Request) domain.Outcome
}

func (m *mockProcessor) ProcessMessage(ctx context.Context, req pipeline.Request) domain.Outcome {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(req)
	}
	return domain.Outcome{Status: domain.StatusProcessed, ExternalID: req.ExternalID}
}

type mockStorage struct {
	fetchFn func(ctx context.Context, uri string) ([]byte, error)
}

func (m *mockStorage) UploadFile(ctx context.Context, bucket, object, path string) error {
	return nil
}

func (m *mockStorage) UploadBytes(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	return "gs://" + bucket + "/" + object, nil
}

func (m *mockStorage) FetchFromGCS(ctx context.Context, uri string) ([]byte, error) {
	return m.fetchFn(ctx, uri)
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Record
		wantErr bool
	}{
		{
			name:  "canonical keys",
			input: `{"message":"Rs 500 debited","date":"2024-03-01","customer_id":"C1","customer_name":"Asha","phone_number":"999","sms_id":"s1","from":"HDFCBK"}`,
			want:  Record{Message: "Rs 500 debited", Date: "2024-03-01", CustomerID: "C1", CustomerName: "Asha", Phone: "999", SMSID: "s1", Sender: "HDFCBK"},
		},
		{
			name:  "alternate keys and case",
			input: `{"Body":"salary credited","Timestamp":"01-03-2024","CID":"C2","Name":"Ravi","Mobile":"888"}`,
			want:  Record{Message: "salary credited", Date: "01-03-2024", CustomerID: "C2", CustomerName: "Ravi", Phone: "888"},
		},
		{
			name:  "numeric ids",
			input: `{"text":"hello","customerid":42,"id":1001}`,
			want:  Record{Message: "hello", CustomerID: "42", SMSID: "1001"},
		},
		{
			name:  "empty message falls through to next key",
			input: `{"message":"  ","content":"fallback text"}`,
			want:  Record{Message: "fallback text"},
		},
		{
			name:    "missing message",
			input:   `{"date":"2024-03-01"}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			input:   `"just a string"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseRecord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecordRequest(t *testing.T) {
	withCustomer := Record{Message: "m", CustomerID: "C1", CustomerName: "Asha", SMSID: "s1"}.Request()
	if withCustomer.Customer == nil || withCustomer.Customer.ID != "C1" || withCustomer.Customer.Name != "Asha" {
		t.Errorf("Request().Customer = %+v, want C1/Asha", withCustomer.Customer)
	}
	if withCustomer.ExternalID != "s1" {
		t.Errorf("Request().ExternalID = %q, want s1", withCustomer.ExternalID)
	}

	anonymous := Record{Message: "m"}.Request()
	if anonymous.Customer != nil {
		t.Errorf("Request().Customer = %+v, want nil", anonymous.Customer)
	}
}

func TestDecodeBatch_Invalid(t *testing.T) {
	for _, input := range []string{``, `{"message":"x"}`, `[{"message":`, `null`} {
		if _, err := DecodeBatch([]byte(input)); !errors.Is(err, ErrInvalidBatch) {
			t.Errorf("DecodeBatch(%q) error = %v, want ErrInvalidBatch", input, err)
		}
	}
}

func TestProcessBatch(t *testing.T) {
	proc := &mockProcessor{
		fn: func(req pipeline.Request) domain.Outcome {
			switch req.ExternalID {
			case "dup":
				return domain.Outcome{Status: domain.StatusDuplicate}
			case "bad":
				return domain.Outcome{Status: domain.StatusFailed, ErrorKind: domain.FailureProcessing}
			default:
				return domain.Outcome{Status: domain.StatusProcessed}
			}
		},
	}
	tracker := jobs.NewProgressTracker(nil)

	var observed []int
	ing := NewIngester(proc, tracker, WithPause(0), WithObserver(func(i int, out domain.Outcome) {
		observed = append(observed, i)
	}))

	batch := `[
		{"message":"ok one","sms_id":"a"},
		{"message":"dup","sms_id":"dup"},
		{"message":"broken","sms_id":"bad"},
		{"date":"2024-01-01"},
		42
	]`

	summary, err := ing.ProcessBatch(context.Background(), []byte(batch))
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	want := jobs.BatchSummary{Total: 5, Processed: 5, Succeeded: 1, Duplicates: 1, Failed: 3}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}
	if len(proc.requests) != 3 {
		t.Errorf("processor called %d times, want 3", len(proc.requests))
	}
	if len(observed) != 5 {
		t.Errorf("observer called %d times, want 5", len(observed))
	}

	snap := tracker.Snapshot()
	if snap.Status != jobs.ProgressCompleted {
		t.Errorf("tracker status = %s, want completed", snap.Status)
	}
	if snap.Processed != 5 || snap.Succeeded != 1 || snap.Duplicates != 1 || snap.Failed != 3 {
		t.Errorf("tracker counters = %+v", snap)
	}
	if snap.ProgressPercentage != 100 {
		t.Errorf("ProgressPercentage = %v, want 100", snap.ProgressPercentage)
	}
}

func TestProcessBatch_InvalidBatch(t *testing.T) {
	tracker := jobs.NewProgressTracker(nil)
	ing := NewIngester(&mockProcessor{}, tracker, WithPause(0))

	if _, err := ing.ProcessBatch(context.Background(), []byte(`{"message":"x"}`)); !errors.Is(err, ErrInvalidBatch) {
		t.Fatalf("ProcessBatch() error = %v, want ErrInvalidBatch", err)
	}
	if got := tracker.Snapshot().Status; got != jobs.ProgressError {
		t.Errorf("tracker status = %s, want error", got)
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	proc := &mockProcessor{}
	proc.fn = func(req pipeline.Request) domain.Outcome {
		cancel()
		return domain.Outcome{Status: domain.StatusProcessed}
	}
	ing := NewIngester(proc, nil, WithPause(0))

	summary, err := ing.ProcessBatch(ctx, []byte(`[{"message":"a"},{"message":"b"},{"message":"c"}]`))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ProcessBatch() error = %v, want context.Canceled", err)
	}
	if summary.Processed != 1 {
		t.Errorf("Processed = %d, want 1", summary.Processed)
	}
	if got := ing.Tracker().Snapshot().Status; got != jobs.ProgressError {
		t.Errorf("tracker status = %s, want error", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Load(context.Background(), path, nil)
	if err != nil || string(data) != "[]" {
		t.Errorf("Load(local) = %q, %v", data, err)
	}

	storage := &mockStorage{fetchFn: func(ctx context.Context, uri string) ([]byte, error) {
		if uri != "gs://bucket/batch.json" {
			t.Errorf("FetchFromGCS uri = %q", uri)
		}
		return []byte(`[{"message":"x"}]`), nil
	}}
	data, err = Load(context.Background(), "gs://bucket/batch.json", storage)
	if err != nil || string(data) != `[{"message":"x"}]` {
		t.Errorf("Load(gcs) = %q, %v", data, err)
	}

	if _, err := Load(context.Background(), "gs://bucket/batch.json", nil); err == nil {
		t.Error("Load(gcs) without storage should fail")
	}
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("Load(missing) should fail")
	}
}

func TestJobHandler(t *testing.T) {
	proc := &mockProcessor{}
	ing := NewIngester(proc, nil, WithPause(0))

	storage := &mockStorage{fetchFn: func(ctx context.Context, uri string) ([]byte, error) {
		return []byte(`[{"message":"from gcs"},{"message":"second"}]`), nil
	}}
	handler := ing.JobHandler(storage)

	uploaded := &jobs.IngestBatchJob{JobID: "j1", Source: "upload.json", Payload: []byte(`[{"message":"inline"}]`)}
	if err := handler(context.Background(), uploaded); err != nil {
		t.Fatalf("handler(upload) error = %v", err)
	}
	if uploaded.Summary == nil || uploaded.Summary.Succeeded != 1 {
		t.Errorf("upload summary = %+v, want 1 succeeded", uploaded.Summary)
	}

	remote := &jobs.IngestBatchJob{JobID: "j2", Source: "gs://bucket/b.json"}
	if err := handler(context.Background(), remote); err != nil {
		t.Fatalf("handler(remote) error = %v", err)
	}
	if remote.Summary == nil || remote.Summary.Total != 2 {
		t.Errorf("remote summary = %+v, want total 2", remote.Summary)
	}

	failing := ing.JobHandler(&mockStorage{fetchFn: func(ctx context.Context, uri string) ([]byte, error) {
		return nil, errors.New("boom")
	}})
	if err := failing(context.Background(), &jobs.IngestBatchJob{JobID: "j3", Source: "gs://bucket/x.json"}); err == nil {
		t.Error("handler should surface fetch errors")
	}
	if got := ing.Tracker().Snapshot().Status; got != jobs.ProgressError {
		t.Errorf("tracker status = %s, want error", got)
	}
}
