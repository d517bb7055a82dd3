package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrEmbeddingModelNotConfigured indicates no embedding model identifier
	// is configured. Fatal: aborts indexing or search, never retried.
	ErrEmbeddingModelNotConfigured = errors.New("embedding model not configured")

	// ErrEmbeddingProvider indicates the embedding provider call failed or
	// returned malformed data. Wrap with the transport detail; fatal for the
	// in-flight rebuild batch or search call.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrRebuildInProgress indicates an index rebuild is already running
	ErrRebuildInProgress = errors.New("rebuild already in progress")

	// ErrSessionNotFound indicates the realtime session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrRealtimeUnavailable indicates the realtime voice API could not be
	// reached or rejected the request
	ErrRealtimeUnavailable = errors.New("realtime service unavailable")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")
)
