package clinical

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation.
type ErrorKind string

const (
	// KindValidation: missing required fields or an unsupported image type.
	// Detected before any I/O and never wraps a lower-level error.
	KindValidation ErrorKind = "validation"
	// KindFileRead: the selected image could not be read into memory.
	KindFileRead ErrorKind = "file_read"
	// KindExtraction: the OCR capability failed or produced no usable text.
	KindExtraction ErrorKind = "extraction"
	// KindTransport: the inference request failed at the network/HTTP layer.
	KindTransport ErrorKind = "transport"
	// KindResponseShape: a 2xx inference response without the expected completion.
	KindResponseShape ErrorKind = "response_shape"
)

// OperationError is a classified failure attached to the current operation.
// Message is short and non-technical; Err carries the underlying cause for logs.
type OperationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is matches another *OperationError by kind, so callers can write
// errors.Is(err, &OperationError{Kind: KindTransport}).
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewValidationError creates a validation error. It never wraps a cause.
func NewValidationError(message string) *OperationError {
	return &OperationError{Kind: KindValidation, Message: message}
}

// NewFileReadError creates a file read error.
func NewFileReadError(err error) *OperationError {
	return &OperationError{Kind: KindFileRead, Message: "The selected lab report could not be read.", Err: err}
}

// NewExtractionError creates an OCR failure error.
func NewExtractionError(message string, err error) *OperationError {
	return &OperationError{Kind: KindExtraction, Message: message, Err: err}
}

// NewTransportError creates an inference transport error.
func NewTransportError(err error) *OperationError {
	return &OperationError{Kind: KindTransport, Message: "Failed to fetch treatment plan. Please try again.", Err: err}
}

// NewResponseShapeError creates an error for a malformed inference response.
func NewResponseShapeError(err error) *OperationError {
	return &OperationError{Kind: KindResponseShape, Message: "Invalid response from the treatment plan service.", Err: err}
}

// KindOf returns the kind of err if it is (or wraps) an *OperationError.
func KindOf(err error) (ErrorKind, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return "", false
}
