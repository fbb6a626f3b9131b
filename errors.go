package main

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies the class of an analytics failure
type ErrorCode string

const (
	ErrCodeInvalidDataset    ErrorCode = "INVALID_DATASET"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeRenderFailed      ErrorCode = "RENDER_FAILED"
	ErrCodeWriteFailed       ErrorCode = "WRITE_FAILED"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
)

// AnalyticsError is the structured error returned by dataset loading,
// exports and API input handling. Metric functions never return one.
type AnalyticsError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AnalyticsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AnalyticsError) Unwrap() error {
	return e.Err
}

// NewAnalyticsError builds an AnalyticsError wrapping err (which may be nil)
func NewAnalyticsError(code ErrorCode, message string, err error) *AnalyticsError {
	return &AnalyticsError{Code: code, Message: message, Err: err}
}

// ErrorCodeOf extracts the code of the first AnalyticsError in err's chain
func ErrorCodeOf(err error) (ErrorCode, bool) {
	var ae *AnalyticsError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}

// HTTPStatus maps an error to the status code the web server answers with
func HTTPStatus(err error) int {
	code, ok := ErrorCodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch code {
	case ErrCodeUnsupportedFormat, ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
