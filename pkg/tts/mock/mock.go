// Package mock provides a test double for the tts.Gateway interface.
//
// Use Gateway to feed a controlled voice catalogue and audio payload to
// consumers and to verify which queries and synthesis requests reach the
// remote service.
//
// Example:
//
//	g := &mock.Gateway{
//	    ListVoicesResult: []tts.Voice{{Name: "en-US-Wavenet-D"}},
//	    SynthesizeResult: []byte("mp3-bytes"),
//	}
//	voices, _ := g.ListVoices(ctx, tts.VoiceQuery{})
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/voxprobe/pkg/tts"
)

// ListVoicesCall records a single invocation of ListVoices.
type ListVoicesCall struct {
	// Ctx is the context passed to ListVoices.
	Ctx context.Context
	// Query is the VoiceQuery passed to ListVoices.
	Query tts.VoiceQuery
}

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Ctx is the context passed to Synthesize.
	Ctx context.Context
	// Request is the SynthesisRequest passed to Synthesize.
	Request tts.SynthesisRequest
}

// Gateway is a mock implementation of tts.Gateway.
type Gateway struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// ListVoicesResult is returned by ListVoices.
	ListVoicesResult []tts.Voice

	// ListVoicesErr, if non-nil, is returned as the error from ListVoices.
	ListVoicesErr error

	// ListVoicesFunc, if non-nil, overrides ListVoicesResult/ListVoicesErr and
	// computes the response per call.
	ListVoicesFunc func(ctx context.Context, query tts.VoiceQuery) ([]tts.Voice, error)

	// SynthesizeResult is returned by Synthesize.
	SynthesizeResult []byte

	// SynthesizeErr, if non-nil, is returned as the error from Synthesize.
	SynthesizeErr error

	// --- Call records ---

	// ListVoicesCalls records every call to ListVoices in order.
	ListVoicesCalls []ListVoicesCall

	// SynthesizeCalls records every call to Synthesize in order.
	SynthesizeCalls []SynthesizeCall
}

// ListVoices records the call and returns ListVoicesResult, ListVoicesErr,
// unless ListVoicesFunc is set.
func (g *Gateway) ListVoices(ctx context.Context, query tts.VoiceQuery) ([]tts.Voice, error) {
	g.mu.Lock()
	g.ListVoicesCalls = append(g.ListVoicesCalls, ListVoicesCall{Ctx: ctx, Query: query})
	fn := g.ListVoicesFunc
	result, err := g.ListVoicesResult, g.ListVoicesErr
	g.mu.Unlock()
	if fn != nil {
		return fn(ctx, query)
	}
	return result, err
}

// Synthesize records the call and returns a copy of SynthesizeResult, SynthesizeErr.
func (g *Gateway) Synthesize(ctx context.Context, req tts.SynthesisRequest) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SynthesizeCalls = append(g.SynthesizeCalls, SynthesizeCall{Ctx: ctx, Request: req})
	if g.SynthesizeErr != nil {
		return nil, g.SynthesizeErr
	}
	audio := make([]byte, len(g.SynthesizeResult))
	copy(audio, g.SynthesizeResult)
	return audio, nil
}

// Reset clears all recorded calls. Thread-safe.
func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ListVoicesCalls = nil
	g.SynthesizeCalls = nil
}

// Ensure Gateway implements tts.Gateway at compile time.
var _ tts.Gateway = (*Gateway)(nil)
