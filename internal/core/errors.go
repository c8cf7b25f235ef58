package core

import "errors"

var (
	// ErrUpstreamUnavailable marks a failed or timed-out call to the
	// external model. Retryable by the caller; never masked by a
	// fabricated answer.
	ErrUpstreamUnavailable = errors.New("upstream model unavailable")

	// ErrSchemaRepair marks a chunk whose model output could not be
	// repaired into valid JSON. Chunk-scoped: logged and skipped.
	ErrSchemaRepair = errors.New("schema repair failed")

	// ErrValidation marks malformed configuration or input, rejected
	// before any work begins.
	ErrValidation = errors.New("validation error")

	// ErrConsistency marks a programming error such as an interaction
	// referencing a fact that was never persisted.
	ErrConsistency = errors.New("consistency violation")
)
