// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002

	// Media ingest errors (1100-1199)
	CodeMediaDownload    = 1100
	CodeAudioExtract     = 1101
	CodeMediaNotFound    = 1102
	CodeUnsupportedMedia = 1103

	// Analysis errors (1200-1299)
	CodeTranscribeFailed    = 1200
	CodeAnalysisUnavailable = 1201

	// Segment errors (1300-1399)
	CodeInvalidSegmentData = 1300

	// Asset library errors (1400-1499)
	CodeAssetLookupFailed = 1400
	CodeAssetFetchFailed  = 1401

	// Audio processing errors (1500-1599)
	CodeAudioDecodeFailed = 1500
	CodeMixFailed         = 1501

	// Assembly errors (1600-1699)
	CodeMediaAssemblyError = 1600

	// Storage errors (1700-1799)
	CodeDBError        = 1700
	CodeFileNotFound   = 1701
	CodeFileWriteError = 1702
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	// Media ingest
	ErrMediaDownload    = New(CodeMediaDownload, "Media download failed")
	ErrAudioExtract     = New(CodeAudioExtract, "Audio extraction failed")
	ErrUnsupportedMedia = New(CodeUnsupportedMedia, "Unsupported media type")

	// Analysis
	ErrTranscribeFailed    = New(CodeTranscribeFailed, "Transcription failed")
	ErrAnalysisUnavailable = New(CodeAnalysisUnavailable, "Content analysis unavailable")

	// Segments
	ErrInvalidSegmentData = New(CodeInvalidSegmentData, "Invalid segment timing data")

	// Assets
	ErrAssetLookupFailed = New(CodeAssetLookupFailed, "Asset library lookup failed")
	ErrAssetFetchFailed  = New(CodeAssetFetchFailed, "Asset download failed")

	// Audio
	ErrAudioDecodeFailed = New(CodeAudioDecodeFailed, "Audio decode failed")
	ErrMixFailed         = New(CodeMixFailed, "Audio mix failed")

	// Assembly
	ErrMediaAssembly = New(CodeMediaAssemblyError, "Media assembly failed")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
