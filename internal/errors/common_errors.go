package errors

import "fmt"

// ErrorType classifies internal failures for logging and metrics.
type ErrorType string

const (
	ErrTypeIngest     ErrorType = "INGEST"
	ErrTypeEngine     ErrorType = "ENGINE"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
)

// AppError wraps an internal failure with its classification and any
// diagnostic context collected on the way up.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext records a diagnostic key/value on the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError builds a classified internal error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause, Context: map[string]interface{}{}}
}

// NewIngestError classifies an upload-decoding failure.
func NewIngestError(message string, cause error) *AppError {
	return NewAppError(ErrTypeIngest, message, cause)
}

// NewEngineError classifies a result-computation failure.
func NewEngineError(message string, cause error) *AppError {
	return NewAppError(ErrTypeEngine, message, cause)
}

// NewConfigError classifies a configuration failure.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
