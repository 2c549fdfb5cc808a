package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// Load reads a batch from a gs:// URI or a local path.
func Load(ctx context.Context, source string, storage gcs.StorageService) ([]byte, error) {
	if gcs.IsURI(source) {
		if storage == nil {
			return nil, fmt.Errorf("Load: %s requires a storage client", source)
		}
		data, err := storage.FetchFromGCS(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("Load: reading %s: %w", source, err)
	}
	return data, nil
}

// JobHandler returns a jobs.JobHandler that ingests IngestBatchJob payloads.
// Jobs without a payload are loaded from their source. The batch summary is
// written back onto the job so the queue persists it.
func (i *Ingester) JobHandler(storage gcs.StorageService) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		batch, ok := job.(*jobs.IngestBatchJob)
		if !ok {
			return fmt.Errorf("ingest: unsupported job type %s", job.GetType())
		}

		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With().
			Str("job_id", batch.JobID).
			Str("source", batch.Source).
			Logger())

		data := batch.Payload
		if len(data) == 0 {
			var err error
			data, err = Load(ctx, batch.Source, storage)
			if err != nil {
				i.tracker.Fail(err)
				return err
			}
		}

		summary, err := i.ProcessBatch(ctx, data)
		if summary != nil {
			batch.Summary = summary
		}
		return err
	}
}
