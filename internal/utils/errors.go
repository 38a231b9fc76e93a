package utils

import "fmt"

// DataInsufficiencyError indicates that no historical rows exist for the
// requested year/scope window. Fatal for a forecast run: the run transitions
// to failed and the error surfaces to the caller without retries.
type DataInsufficiencyError struct {
	Years    []int
	Position string
	State    string
}

// Error returns the error message string.
func (e *DataInsufficiencyError) Error() string {
	return fmt.Sprintf("no historical vote data for years %v (position=%q, state=%q)", e.Years, e.Position, e.State)
}

// NewDataInsufficiencyError creates a DataInsufficiencyError for the given scope.
func NewDataInsufficiencyError(years []int, position, state string) error {
	return &DataInsufficiencyError{Years: years, Position: position, State: state}
}

// NarrativeGenerationError indicates that the text-generation collaborator
// failed or returned empty content. Recovered locally with a fallback
// sentence; a run never fails because of it.
type NarrativeGenerationError struct {
	Cause error
}

// Error returns the error message string.
func (e *NarrativeGenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("narrative generation failed: %v", e.Cause)
	}
	return "narrative generation returned empty content"
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *NarrativeGenerationError) Unwrap() error {
	return e.Cause
}

// NewNarrativeGenerationError wraps a text-generation failure.
func NewNarrativeGenerationError(cause error) error {
	return &NarrativeGenerationError{Cause: cause}
}

// ValidationError represents an error occurring during request validation.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
