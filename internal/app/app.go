// Package app wires configuration into the long-lived collaborators every
// binary needs: the logger, the storage backend and the message processor.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	infraBQ "github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/infra/bigquery"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/infra/sqlite"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/llm"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// OpenRepository opens the configured storage backend.
func OpenRepository(ctx context.Context, cfg *config.Config) (store.Repository, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		return repo, nil
	case config.BackendBigQuery:
		repo, err := infraBQ.NewRepository(ctx, infraBQ.Dataset{ProjectID: cfg.BQProject, DatasetID: cfg.BQDataset})
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("OpenRepository: unknown backend %q", cfg.StorageBackend)
	}
}

// NewAnalyzer builds the model-backed analyzer. Without an API key it returns
// an analyzer whose Available reports false, so processing falls back to rules.
func NewAnalyzer(ctx context.Context, cfg *config.Config) (*pipeline.ModelAnalyzer, error) {
	log := logger.FromContext(ctx)
	retry := llm.DefaultRetryConfig
	retry.MaxRetries = cfg.ModelMaxRetries

	model, err := llm.NewGeminiModel(ctx, llm.GeminiConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.ModelName,
		Temperature: cfg.ModelTemperature,
		Retry:       retry,
	})
	if err != nil {
		var modelErr *llm.ModelError
		if errors.As(err, &modelErr) && modelErr.Code == llm.ErrCodeNotConfigured {
			log.Warn().Msg("No model API key configured, using rule-based analysis only")
			return pipeline.NewModelAnalyzer(nil), nil
		}
		return nil, fmt.Errorf("NewAnalyzer: %w", err)
	}

	log.Info().Str("model", model.Name()).Msg("Model initialized")
	return pipeline.NewModelAnalyzer(model), nil
}

// NewProcessor assembles the message processor over analyzer and repo.
// A nil repo runs analysis without persistence.
func NewProcessor(cfg *config.Config, analyzer pipeline.Analyzer, repo store.MessageRepository) *pipeline.Processor {
	opts := pipeline.Options{
		Analyzer:        analyzer,
		FallbackEnabled: cfg.FallbackEnabled,
		DefaultCustomer: cfg.DefaultCustomer,
	}
	if repo != nil {
		opts.Store = repo
	}
	return pipeline.NewProcessor(opts)
}
