package errors

import "fmt"

// Error codes
const (
	CodeArchiveError = "ARCHIVE_ERROR"
	CodeAPIError     = "API_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeCache        = "CACHE_ERROR"
	CodeService      = "SERVICE_ERROR"
	CodeAcquisition  = "ACQUISITION_ERROR"
)

type ArchiveError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

func NewArchiveError(message, code string, statusCode int, context map[string]any) *ArchiveError {
	return &ArchiveError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *ArchiveError) WithCause(cause error) *ArchiveError {
	e.Cause = cause
	return e
}

type APIError struct {
	*ArchiveError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		ArchiveError: &ArchiveError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*ArchiveError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		ArchiveError: &ArchiveError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*ArchiveError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		ArchiveError: &ArchiveError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*ArchiveError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		ArchiveError: &ArchiveError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// AcquisitionError marks audio download or speech recognition failures that
// degrade a single video to an error decision instead of aborting the run.
type AcquisitionError struct {
	*ArchiveError
	VideoID string
	Stage   string
}

func NewAcquisitionError(message, videoID, stage string, cause error) *AcquisitionError {
	return &AcquisitionError{
		ArchiveError: &ArchiveError{
			Message:    message,
			Code:       CodeAcquisition,
			StatusCode: 500,
			Context: map[string]any{
				"video_id": videoID,
				"stage":    stage,
			},
			Cause: cause,
		},
		VideoID: videoID,
		Stage:   stage,
	}
}
