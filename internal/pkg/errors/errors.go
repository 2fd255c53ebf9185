package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTranscriptionFailed means the speech stage produced no transcript.
	ErrTranscriptionFailed = errors.New("failed to transcribe audio")
	// ErrEmailDisabled means outbound email is switched off for this deployment.
	ErrEmailDisabled = errors.New("email sending is disabled")
	// ErrNotConfigured means a required provider was not configured.
	ErrNotConfigured = errors.New("provider not configured")
)
