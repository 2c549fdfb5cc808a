package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
)

// reportJobs logs the final state of every job and returns how many did not complete.
func reportJobs(ctx context.Context, log zerolog.Logger, store jobs.JobStore) int {
	list, err := store.ListJobs(ctx, jobs.JobFilter{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs")
		return 0
	}

	failed := 0
	for _, job := range list {
		event := log.Info()
		if job.Status != jobs.JobStatusCompleted {
			failed++
			event = log.Error().Str("error", job.Error)
		}
		if job.Summary != nil {
			event = event.
				Int("succeeded", job.Summary.Succeeded).
				Int("duplicates", job.Summary.Duplicates).
				Int("failed", job.Summary.Failed)
		}
		event.
			Str("job_id", job.JobID).
			Str("source", job.Source).
			Str("status", string(job.Status)).
			Int("retries", job.RetryCount).
			Msg("Batch finished")
	}
	return failed
}
