package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid (e.g. a hybrid setting out of range)
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyQuery indicates a blank query text was supplied to search or chat
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrIngestPathRequired indicates no path was supplied to the ingestor
	ErrIngestPathRequired = errors.New("ingest path is required")

	// ErrIngestPathUnreadable indicates the ingest root could not be walked at all
	ErrIngestPathUnreadable = errors.New("ingest path could not be read")
)
