package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown container or attachment type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotConfigured indicates a required setting is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrRunInProgress indicates another run holds the working directory.
	ErrRunInProgress = errors.New("run in progress")

	// ErrNoText indicates a document produced no extractable text.
	ErrNoText = errors.New("no text found")

	// Remote Tracking Errors.

	// ErrAuthInvalid indicates the tracking service rejected the credentials.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyUploaded indicates a group key was uploaded by an earlier run.
	ErrAlreadyUploaded = errors.New("already uploaded")
)
