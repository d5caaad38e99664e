package entity

import "errors"

// Domain errors
var (
	// Pipeline stage errors, fatal to the whole request
	ErrDownload          = errors.New("document download failed")
	ErrDocumentTooLarge  = errors.New("document too large")
	ErrExtraction        = errors.New("text extraction failed")
	ErrUnsupportedType   = errors.New("unsupported document type")
	ErrIndexing          = errors.New("document indexing failed")
	ErrEmbedderInit      = errors.New("embedding model initialization failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Model errors, degraded to placeholder answers
	ErrRateLimited = errors.New("model rate limit exceeded")
	ErrGeneration  = errors.New("answer generation failed")
	ErrEmptyAnswer = errors.New("model returned an empty answer")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrTooManyQuestions = errors.New("too many questions")

	// Auth errors
	ErrUnauthorized = errors.New("invalid or missing authentication token")
)
