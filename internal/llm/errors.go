package llm

import (
	"errors"
	"fmt"
)

// ModelErrorCode classifies failures talking to the text model.
type ModelErrorCode string

const (
	ErrCodeNotConfigured ModelErrorCode = "MODEL_NOT_CONFIGURED"
	ErrCodeUnavailable   ModelErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeRateLimited   ModelErrorCode = "MODEL_RATE_LIMITED"
	ErrCodeRejected      ModelErrorCode = "MODEL_REJECTED_REQUEST"
	ErrCodeEmptyResponse ModelErrorCode = "MODEL_EMPTY_RESPONSE"
)

// ModelError is a structured error for model call failures.
type ModelError struct {
	Code      ModelErrorCode
	Message   string
	Model     string
	Retryable bool
	Cause     error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *ModelError) IsRetryable() bool {
	return e.Retryable
}

// IsRetryable reports whether err, or anything it wraps, is a retryable ModelError.
func IsRetryable(err error) bool {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return false
}
