// Package tts defines the Gateway interface for speech synthesis backends.
//
// A gateway wraps a remote text-to-speech service (e.g., Google Cloud TTS)
// and presents a uniform request/response interface: list the available
// voices, or turn one piece of text (plain or SSML) into one finished blob
// of encoded audio. There is no streaming surface; the tester works on
// whole utterances and whole files.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Gateway is the abstraction over a remote TTS backend.
//
// Implementations must distinguish authentication failures from other
// failures by wrapping ErrNotAuthenticated, since callers print different
// guidance for each.
type Gateway interface {
	// ListVoices returns the voices available from the backend. The query's
	// LanguageCode is forwarded to the service; NameContains and Gender are
	// applied client-side by the implementation. A zero query returns the
	// complete catalogue.
	//
	// Returns an error if the service cannot be reached or if ctx is
	// cancelled before the list is retrieved.
	ListVoices(ctx context.Context, query VoiceQuery) ([]Voice, error)

	// Synthesize converts req into encoded audio bytes in the requested
	// encoding. The input must carry exactly one of Text or SSML; callers
	// classify the input (see NewInput) before invoking the gateway.
	//
	// The call blocks until the service responds or ctx is cancelled. No
	// retries are attempted.
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}
