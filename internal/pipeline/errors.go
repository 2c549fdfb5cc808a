package pipeline

import (
	"errors"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

var (
	// ErrValidation marks input that cannot be processed at all.
	ErrValidation = errors.New("validation failed")

	// ErrModelUnavailable marks a model that is not configured or whose call failed.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelResultInvalid marks a model reply that could not be used.
	ErrModelResultInvalid = errors.New("model result invalid")

	// ErrPersistence marks a storage failure.
	ErrPersistence = errors.New("persistence failed")
)

// failureKind maps a pipeline error onto the kind reported in an Outcome.
func failureKind(err error) domain.FailureKind {
	switch {
	case errors.Is(err, ErrValidation):
		return domain.FailureValidation
	case errors.Is(err, ErrModelResultInvalid):
		return domain.FailureModelResult
	case errors.Is(err, ErrModelUnavailable):
		return domain.FailureModelAnalysis
	default:
		return domain.FailureProcessing
	}
}
