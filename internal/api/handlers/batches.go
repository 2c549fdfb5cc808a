package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/middleware"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/ingest"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// MaxBatchBytes bounds the size of an uploaded batch.
const MaxBatchBytes = 32 << 20

// BatchHandler handles batch uploads and processing status.
type BatchHandler struct {
	tracker   *jobs.ProgressTracker
	publisher jobs.Publisher
	storage   gcs.StorageService
	bucket    string
	now       func() time.Time
}

// NewBatchHandler creates a new batch handler. Uploaded batches are archived
// when both storage and bucket are set.
func NewBatchHandler(tracker *jobs.ProgressTracker, publisher jobs.Publisher, storage gcs.StorageService, bucket string) *BatchHandler {
	return &BatchHandler{
		tracker:   tracker,
		publisher: publisher,
		storage:   storage,
		bucket:    bucket,
		now:       time.Now,
	}
}

// UploadJSON handles POST /api/upload-json. The body is either a multipart form
// with a "file" field or the raw JSON array.
func (h *BatchHandler) UploadJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, MaxBatchBytes)
	filename, data, err := readBatchUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Batch is too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := ingest.DecodeBatch(data)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, ingest.ErrInvalidBatch.Error())
		return
	}

	if !h.tracker.TryBegin(filename) {
		middleware.WriteError(w, http.StatusConflict, "Another file is currently being processed. Please wait for it to complete.")
		return
	}

	job := &jobs.IngestBatchJob{Source: filename, Payload: data}
	if h.storage != nil && h.bucket != "" {
		uri, err := h.storage.UploadBytes(ctx, h.bucket, gcs.BatchObjectName(h.now(), filename), data, "application/json")
		if err != nil {
			log.Warn().Err(err).Str("filename", filename).Msg("Failed to archive batch")
		} else {
			job.ArchiveURI = uri
		}
	}

	if err := h.publisher.PublishIngestBatch(ctx, job); err != nil {
		h.tracker.Fail(err)
		log.Error().Err(err).Msg("Failed to enqueue batch")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue batch")
		return
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("filename", filename).
		Int("records", len(entries)).
		Msg("Batch enqueued")

	resp := map[string]interface{}{
		"status":        "accepted",
		"message":       "JSON file uploaded successfully. Processing started in background.",
		"job_id":        job.JobID,
		"total_records": len(entries),
	}
	if job.ArchiveURI != "" {
		resp["archive_uri"] = job.ArchiveURI
	}
	middleware.WriteJSON(w, http.StatusAccepted, resp)
}

func readBatchUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, err
		}
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = "upload.json"
		}
		return filepath.Base(name), data, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, errors.New("file field is required")
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		return "", nil, errors.New("file must be a JSON file")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// ProcessingStatus handles GET /api/processing-status
func (h *BatchHandler) ProcessingStatus(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// ResetProcessingStatus handles POST /api/reset-processing-status
func (h *BatchHandler) ResetProcessingStatus(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	log := logger.FromContext(r.Context())
	log.Info().Msg("Processing status reset")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Processing status reset successfully",
	})
}
