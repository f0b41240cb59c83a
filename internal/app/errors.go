package app

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrMessageEmpty     = errors.New("message content is empty")

	// ErrEmptyScope rejects session creation against a scope with zero
	// ready documents.
	ErrEmptyScope = errors.New("scope has no ready documents")

	// ErrGeneration marks a failed or timed-out model call. The user's
	// message stays in history and the caller may retry.
	ErrGeneration = errors.New("answer generation failed")

	// ErrIngestEnqueue marks a failed hand-off to the ingestion queue.
	ErrIngestEnqueue = errors.New("ingest job enqueue failed")
)
