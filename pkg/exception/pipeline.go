package exception

import "errors"

// Fetch errors
var (
	ErrUnexpectedStatus = errors.New("fetch: unexpected response status")
	ErrMalformedPayload = errors.New("fetch: malformed response payload")
)

// Batch errors
var (
	ErrNoIdentifierColumn = errors.New("batch: identifier column missing entirely")
)

// Sink errors
var (
	ErrSinkUnavailable   = errors.New("sink: unavailable")
	ErrMissingIdentifier = errors.New("sink: record has no identifier")
)
