package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeAutomation represents fetch/DOM layer failures
	ErrorTypeAutomation ErrorType = "automation"
	// ErrorTypeExtraction represents a malformed deck or row
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeValidation represents a field failing a type/range check
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStorage represents document or relational store errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents a pipeline-specific error
type PipelineError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsSkippable reports whether the error should skip the current unit
// (row, deck, or page) and let the run continue. Storage and
// configuration errors are fatal for the run.
func (e *PipelineError) IsSkippable() bool {
	switch e.Type {
	case ErrorTypeExtraction, ErrorTypeValidation, ErrorTypeAutomation:
		return true
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, source, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewAutomation creates a new automation error
func NewAutomation(source, message string, err error) *PipelineError {
	return New(ErrorTypeAutomation, source, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(source, message string, err error) *PipelineError {
	return New(ErrorTypeExtraction, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *PipelineError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewStorage creates a new storage error
func NewStorage(source, message string, err error) *PipelineError {
	return New(ErrorTypeStorage, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
