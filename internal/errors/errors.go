package errors

import (
	"fmt"
	"time"
)

// ErrorCode classifies pipeline failures for structured handling.
type ErrorCode string

const (
	// Input validation errors
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorInvalidImage ErrorCode = "INVALID_IMAGE"

	// Stage errors
	ErrorExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	ErrorTokenizeFailed   ErrorCode = "TOKENIZE_FAILED"
	ErrorRenderFailed     ErrorCode = "RENDER_FAILED"

	// Whole-pipeline failure with no more specific classification
	ErrorPipelineAborted ErrorCode = "PIPELINE_ABORTED"
)

// PipelineError represents a structured processing error.
type PipelineError struct {
	Code      ErrorCode
	Message   string
	RequestID string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewInvalidInputError(reason string) *PipelineError {
	return &PipelineError{
		Code:      ErrorInvalidInput,
		Message:   fmt.Sprintf("Invalid input: %s", reason),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"reason": reason,
		},
	}
}

func NewInvalidImageError(channels int) *PipelineError {
	return &PipelineError{
		Code:      ErrorInvalidImage,
		Message:   fmt.Sprintf("Image buffer must have 3 channels, got %d", channels),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"channels": channels,
		},
	}
}

func NewExtractionFailedError(requestID string, cause error) *PipelineError {
	return &PipelineError{
		Code:      ErrorExtractionFailed,
		Message:   "Text extraction failed",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewTokenizeFailedError(requestID string, cause error) *PipelineError {
	return &PipelineError{
		Code:      ErrorTokenizeFailed,
		Message:   "Tokenization failed",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewRenderFailedError(requestID string, cause error) *PipelineError {
	return &PipelineError{
		Code:      ErrorRenderFailed,
		Message:   "Annotation rendering failed",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// ToMap converts the error to a map for the HTTP error payload.
func (e *PipelineError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
