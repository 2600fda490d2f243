// Package errors holds the error definitions shared by every launchboard package.
//
// This file provides:
// - Wire error codes (protobuf stream and HTTP surface)
// - Sentinel errors and the two typed errors of the query boundary
// - Error category checks, ErrorToCode and HTTPStatus mapping
// - Wrapping utilities and a ValidationErrors collector

package errors

import (
	"errors"
	"fmt"
	"math"
	"net/http"
)

// ============================================================================
// Wire error codes
// ============================================================================

const (
	CodeUnknown           int32 = 1
	CodeDataLoad          int32 = 2
	CodeInvalidRange      int32 = 3
	CodeInvalidRequest    int32 = 4
	CodeUnsupportedFormat int32 = 5
	CodeInternal          int32 = 6
)

// CodeName returns a human-readable name for an error code.
func CodeName(code int32) string {
	switch code {
	case CodeUnknown:
		return "Unknown"
	case CodeDataLoad:
		return "DataLoad"
	case CodeInvalidRange:
		return "InvalidRange"
	case CodeInvalidRequest:
		return "InvalidRequest"
	case CodeUnsupportedFormat:
		return "UnsupportedFormat"
	case CodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Code(%d)", code)
	}
}

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Dataset loading
	ErrDataLoad     = errors.New("data load failed")
	ErrEmptyDataset = errors.New("dataset is empty")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidValue = errors.New("invalid value")

	// Query boundary
	ErrInvalidRange = errors.New("invalid payload range")

	// Configuration and I/O
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnsupportedFormat  = errors.New("unsupported dataset format")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInternal           = errors.New("internal error")
	ErrSQLViewUnavailable = errors.New("sql view is disabled")
)

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// New is a convenience wrapper for errors.New
var New = errors.New

// ============================================================================
// Typed errors
// ============================================================================

// DataLoadError reports a malformed or empty source dataset. It is fatal at
// startup: no partial dashboard is served.
type DataLoadError struct {
	Source string // file path or "rows" for in-memory input
	Err    error
}

// NewDataLoad wraps err as a DataLoadError for the given source.
func NewDataLoad(source string, err error) *DataLoadError {
	return &DataLoadError{Source: source, Err: err}
}

func (e *DataLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

// Unwrap exposes both the category sentinel and the underlying cause.
func (e *DataLoadError) Unwrap() []error {
	return []error{ErrDataLoad, e.Err}
}

// InvalidRangeError reports a payload range with Low > High (or a NaN bound).
// The bounds are never swapped: an inverted range is a caller defect.
type InvalidRangeError struct {
	Low  float64
	High float64
}

// NewInvalidRange returns an InvalidRangeError for the given bounds.
func NewInvalidRange(low, high float64) *InvalidRangeError {
	return &InvalidRangeError{Low: low, High: high}
}

func (e *InvalidRangeError) Error() string {
	if math.IsNaN(e.Low) || math.IsNaN(e.High) {
		return fmt.Sprintf("invalid payload range [%v, %v]: bound is not a number", e.Low, e.High)
	}
	return fmt.Sprintf("invalid payload range [%g, %g]: low exceeds high", e.Low, e.High)
}

// Is reports ErrInvalidRange as the category of this error.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// ============================================================================
// Category checks
// ============================================================================

// IsDataLoad returns true if err is a dataset load error.
func IsDataLoad(err error) bool {
	return errors.Is(err, ErrDataLoad) ||
		errors.Is(err, ErrEmptyDataset)
}

// IsInvalidRange returns true if err is an inverted or NaN payload range.
func IsInvalidRange(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}

// IsValidation returns true if err is a field or config validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidRequest)
}

// ============================================================================
// Error to code mapping
// ============================================================================

// ErrorToCode maps an error to its wire code.
func ErrorToCode(err error) int32 {
	if err == nil {
		return CodeUnknown
	}

	switch {
	case IsInvalidRange(err):
		return CodeInvalidRange
	case IsDataLoad(err):
		return CodeDataLoad
	case Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case IsValidation(err):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error to the status code served by the HTTP surface.
func HTTPStatus(err error) int {
	switch ErrorToCode(err) {
	case CodeInvalidRange, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s %q: %s: %w", field, fmt.Sprint(value), reason, ErrInvalidValue)
}

// NewValidation creates a config validation error.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Len returns the number of collected errors.
func (v *ValidationErrors) Len() int {
	return len(v.Errors)
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap exposes every collected error to errors.Is/As.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
