// Package errors provides the consultation error taxonomy and its mapping to
// BPMN errors for the workflow engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors, surfaced to the caller before any stage runs.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Generator errors are recovered locally by the stage fallbacks.
	ErrCodeGeneratorUnavailable ErrorCode = "GENERATOR_UNAVAILABLE"
	ErrCodeGeneratorTimeout     ErrorCode = "GENERATOR_TIMEOUT"

	// Storage errors abort the pipeline run.
	ErrCodeStorageFailed      ErrorCode = "STORAGE_FAILED"
	ErrCodeCatalogQueryFailed ErrorCode = "CATALOG_QUERY_FAILED"

	// Retrieval never fails a run; degraded mode is only reported.
	ErrCodeRetrievalDegraded ErrorCode = "RETRIEVAL_DEGRADED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Consultation input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeneratorUnavailableError reports that no text generator could serve the call.
func NewGeneratorUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeneratorUnavailable,
		Message:   "Text generator unavailable",
		Details:   detailOf(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGeneratorTimeoutError reports a generator call that exceeded its deadline.
func NewGeneratorTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeneratorTimeout,
		Message:   "Text generator timeout",
		Details:   fmt.Sprintf("call exceeded %s", timeout),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageFailedError creates a retryable persistence error.
func NewStorageFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageFailed,
		Message:   "Consultation storage operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, detailOf(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogQueryFailedError creates a retryable catalog query error.
func NewCatalogQueryFailedError(category string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryFailed,
		Message:   "Supplement catalog query failed",
		Details:   fmt.Sprintf("category: %s, error: %s", category, detailOf(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRetrievalDegradedError describes a retriever that fell back to keyword lookup.
func NewRetrievalDegradedError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalDegraded,
		Message:   "Knowledge retrieval running in keyword mode",
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   detailOf(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func detailOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:     "VALIDATION_FAILED",
	ErrCodeGeneratorUnavailable: "GENERATOR_UNAVAILABLE",
	ErrCodeGeneratorTimeout:     "GENERATOR_TIMEOUT",
	ErrCodeStorageFailed:        "STORAGE_FAILED",
	ErrCodeCatalogQueryFailed:   "CATALOG_QUERY_FAILED",
	ErrCodeRetrievalDegraded:    "RETRIEVAL_DEGRADED",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageFailed,
		ErrCodeCatalogQueryFailed:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard extracts the first StandardError in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GENERATOR"):
		return "AI"
	case strings.Contains(codeStr, "STORAGE") || strings.Contains(codeStr, "CATALOG"):
		return "DATABASE"
	case strings.Contains(codeStr, "RETRIEVAL"):
		return "SEARCH"
	default:
		return "OTHER"
	}
}
