// Package apperr defines the sentinel errors shared across the pipeline.
package apperr

import "errors"

var (
	// ErrNotFound means the remote source has no post with the requested id.
	ErrNotFound = errors.New("not found")
	// ErrSourceUnavailable means a transport failure or malformed payload
	// from the remote source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedContent means a post body failed sanitization assumptions.
	ErrMalformedContent = errors.New("malformed content")
)
