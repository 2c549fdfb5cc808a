package gcs

import (
	"strings"
	"testing"
	"time"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		bucket     string
		object     string
		shouldFail bool
	}{
		{"gs://sms-batches/batches/2024/06/15/a.json", "sms-batches", "batches/2024/06/15/a.json", false},
		{"gs://bucket/file.json", "bucket", "file.json", false},
		{"gs://bucket", "", "", true},
		{"gs://bucket/", "", "", true},
		{"s3://bucket/file.json", "", "", true},
		{"/tmp/file.json", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.shouldFail {
				if err == nil {
					t.Errorf("ParseURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI(%q): %v", tt.uri, err)
			}
			if bucket != tt.bucket || object != tt.object {
				t.Errorf("ParseURI(%q) = %q, %q", tt.uri, bucket, object)
			}
			if got := BuildURI(bucket, object); got != tt.uri {
				t.Errorf("BuildURI round trip = %q", got)
			}
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	tests := map[string]string{
		"gs://bucket/folder/file.json": "file.json",
		"gs://bucket/file.json":        "file.json",
		"gs://bucket":                  "bucket",
	}
	for uri, want := range tests {
		if got := ExtractFilenameFromGCSURI(uri); got != want {
			t.Errorf("ExtractFilenameFromGCSURI(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestBatchObjectName(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)

	got := BatchObjectName(now, `C:\exports\sms.json`)
	if !strings.HasPrefix(got, "batches/2024/06/15/") {
		t.Errorf("BatchObjectName prefix = %q", got)
	}
	if !strings.HasSuffix(got, "-sms.json") {
		t.Errorf("BatchObjectName suffix = %q", got)
	}
	if other := BatchObjectName(now, "sms.json"); other == got {
		t.Error("object names should be unique")
	}
	if got := BatchObjectName(now, ""); !strings.HasSuffix(got, "-batch.json") {
		t.Errorf("empty filename = %q", got)
	}
}
