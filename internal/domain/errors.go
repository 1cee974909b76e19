package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeEmbedding       = "EMBEDDING_ERROR"
	ErrCodeRetrieval       = "RETRIEVAL_ERROR"
	ErrCodeBuild           = "BUILD_ERROR"
	ErrCodeCorruptIndex    = "CORRUPT_INDEX"
	ErrCodeExternalService = "EXTERNAL_SERVICE"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Embedding errors
var (
	ErrZeroNormEmbedding = NewDomainError(ErrCodeEmbedding, "embedding vector has zero norm (degenerate input)")
	ErrEmptyEmbeddingSet = NewDomainError(ErrCodeEmbedding, "no texts provided to embed")
)

// Retrieval errors
var (
	ErrEmptyIndex = NewDomainError(ErrCodeRetrieval, "vector index contains no chunks")
)

// Validation errors
var (
	ErrDimensionMismatch     = NewDomainError(ErrCodeValidation, "vector dimension does not match index dimension")
	ErrChunkVectorMismatch   = NewDomainError(ErrCodeValidation, "chunk and vector counts differ")
	ErrInvalidChunkConfig    = NewDomainError(ErrCodeValidation, "overlap must satisfy 0 <= overlap < chunk size")
	ErrMissingDocumentText   = NewDomainError(ErrCodeValidation, "document has no text")
	ErrMissingDocumentSource = NewDomainError(ErrCodeValidation, "document has no source identifier")
)

// Persisted index errors
var (
	ErrIndexArtifactsMissing = NewDomainError(ErrCodeCorruptIndex, "index or manifest artifact missing")
	ErrIndexManifestMismatch = NewDomainError(ErrCodeCorruptIndex, "index and manifest are inconsistent")
)

// External service errors
var (
	ErrCompletionUnavailable = NewDomainError(ErrCodeExternalService, "completion service unavailable or timed out")
)

// IsCode reports whether err is (or wraps) a DomainError with the given code.
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
