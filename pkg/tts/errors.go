package tts

import "errors"

// Sentinel errors shared across gateway implementations and callers. Test
// with errors.Is; implementations wrap them with context.
var (
	// ErrNotAuthenticated signals that the synthesis service rejected or
	// never received credentials. Callers print setup guidance for this
	// kind and generic failure output for everything else.
	ErrNotAuthenticated = errors.New("not authenticated with the synthesis service")

	// ErrEmptyInput signals blank (empty or whitespace-only) input text.
	// It is raised before any remote call is attempted.
	ErrEmptyInput = errors.New("input text must not be empty")

	// ErrUnknownEncoding signals an encoding name outside the valid set.
	ErrUnknownEncoding = errors.New("unknown audio encoding")
)
