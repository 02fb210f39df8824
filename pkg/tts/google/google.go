// Package google provides a Google Cloud Text-to-Speech backed Gateway that
// talks to the v1 REST API. It implements the tts.Gateway interface.
//
// Voice listing is performed via GET /v1/voices (with an optional
// languageCode query parameter); synthesis via POST /v1/text:synthesize,
// which returns base64-encoded audio in the requested encoding.
//
// Credentials resolve lazily on the first remote call: either an API key
// (sent as the key query parameter) or an OAuth access token (sent as a
// Bearer Authorization header, with x-goog-user-project when a project is
// configured). A gateway constructed without credentials does not fail until
// it is actually used, and then fails with tts.ErrNotAuthenticated so the
// caller can print setup guidance.
//
// Typical usage:
//
//	gw := google.New(google.WithCredentials(google.Credentials{APIKey: key}))
//	voices, err := gw.ListVoices(ctx, tts.VoiceQuery{LanguageCode: "en-US"})
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/MrWong99/voxprobe/pkg/tts"
)

// Compile-time interface assertion.
var _ tts.Gateway = (*Gateway)(nil)

const (
	defaultBaseURL     = "https://texttospeech.googleapis.com/v1"
	defaultTimeout     = 30 * time.Second
	voicesEndpoint     = "/voices"
	synthesizeEndpoint = "/text:synthesize"

	// maxErrorBodyBytes caps how much of an error response body is read for
	// the error message.
	maxErrorBodyBytes = 4 << 10
)

// Credentials carries the authentication material for the API. An access
// token takes precedence over an API key when both are set.
type Credentials struct {
	// AccessToken is an OAuth2 access token (e.g., from
	// `gcloud auth application-default print-access-token`).
	AccessToken string

	// APIKey is a Google Cloud API key with the Text-to-Speech API enabled.
	APIKey string

	// Project is the quota project sent as x-goog-user-project alongside an
	// access token. Optional.
	Project string
}

// Empty reports whether no usable credential is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.APIKey == ""
}

// ---- options ----

// Option is a functional option for configuring a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = hc
	}
}

// WithBaseURL points the gateway at a different API root. Intended for tests.
func WithBaseURL(u string) Option {
	return func(g *Gateway) {
		g.baseURL = u
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.httpClient.Timeout = d
	}
}

// WithCredentials supplies static credentials, bypassing the environment.
func WithCredentials(creds Credentials) Option {
	return func(g *Gateway) {
		g.resolve = func() (Credentials, error) { return creds, nil }
	}
}

// WithCredentialsFunc supplies a resolver invoked once, at the first remote
// call. Use this to defer credential lookup until the gateway is needed.
func WithCredentialsFunc(fn func() (Credentials, error)) Option {
	return func(g *Gateway) {
		g.resolve = fn
	}
}

// ---- Gateway ----

// Gateway implements tts.Gateway against the Google Cloud TTS REST API.
// It is safe for concurrent use.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	resolve    func() (Credentials, error)

	credsOnce sync.Once
	creds     Credentials
	credsErr  error
}

// New creates a Gateway. Without options it reads credentials from the
// GOOGLE_TTS_ACCESS_TOKEN, GOOGLE_TTS_API_KEY and GOOGLE_CLOUD_PROJECT
// environment variables at first use. New never fails; missing credentials
// surface as tts.ErrNotAuthenticated on the first call.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		resolve: credentialsFromEnv,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// credentialsFromEnv is the default resolver.
func credentialsFromEnv() (Credentials, error) {
	return Credentials{
		AccessToken: os.Getenv("GOOGLE_TTS_ACCESS_TOKEN"),
		APIKey:      os.Getenv("GOOGLE_TTS_API_KEY"),
		Project:     os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}, nil
}

// credentials resolves the credential material exactly once.
func (g *Gateway) credentials() (Credentials, error) {
	g.credsOnce.Do(func() {
		g.creds, g.credsErr = g.resolve()
		if g.credsErr == nil && g.creds.Empty() {
			g.credsErr = fmt.Errorf("google: %w: set GOOGLE_TTS_ACCESS_TOKEN or GOOGLE_TTS_API_KEY", tts.ErrNotAuthenticated)
		}
	})
	return g.creds, g.credsErr
}

// authorize attaches the resolved credentials to req.
func (g *Gateway) authorize(req *http.Request, creds Credentials) {
	if creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		if creds.Project != "" {
			req.Header.Set("x-goog-user-project", creds.Project)
		}
		return
	}
	q := req.URL.Query()
	q.Set("key", creds.APIKey)
	req.URL.RawQuery = q.Encode()
}

// ---- wire types ----

// apiVoice is a single voice entry as returned by GET /v1/voices.
type apiVoice struct {
	LanguageCodes          []string `json:"languageCodes"`
	Name                   string   `json:"name"`
	SSMLGender             string   `json:"ssmlGender"`
	NaturalSampleRateHertz int      `json:"naturalSampleRateHertz"`
}

// voicesResponse is the top-level response from GET /v1/voices.
type voicesResponse struct {
	Voices []apiVoice `json:"voices"`
}

// synthesisInput mirrors the API's SynthesisInput: exactly one of text or
// ssml is populated.
type synthesisInput struct {
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

// voiceSelectionParams mirrors the API's VoiceSelectionParams.
type voiceSelectionParams struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
}

// audioConfig mirrors the API's AudioConfig.
type audioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate,omitempty"`
	Pitch         float64 `json:"pitch,omitempty"`
	VolumeGainDB  float64 `json:"volumeGainDb,omitempty"`
}

// synthesizeRequest is the JSON body for POST /v1/text:synthesize.
type synthesizeRequest struct {
	Input       synthesisInput       `json:"input"`
	Voice       voiceSelectionParams `json:"voice"`
	AudioConfig audioConfig          `json:"audioConfig"`
}

// synthesizeResponse is the JSON body returned by POST /v1/text:synthesize.
type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// apiError is the Google error envelope, used to surface a readable message.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ---- ListVoices ----

// ListVoices fetches the voice catalogue. The query's LanguageCode is
// forwarded to the API; NameContains and Gender are applied client-side on
// the response, matching tts.FilterVoices semantics.
func (g *Gateway) ListVoices(ctx context.Context, query tts.VoiceQuery) ([]tts.Voice, error) {
	creds, err := g.credentials()
	if err != nil {
		return nil, err
	}

	reqURL := g.baseURL + voicesEndpoint
	if query.LanguageCode != "" {
		reqURL += "?" + url.Values{"languageCode": {query.LanguageCode}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google: create list-voices request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	g.authorize(req, creds)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: GET %s: %w", voicesEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.statusError(http.MethodGet, voicesEndpoint, resp)
	}

	var vr voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("google: decode voices response: %w", err)
	}

	voices := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		voices = append(voices, tts.Voice{
			Name:                   v.Name,
			LanguageCodes:          v.LanguageCodes,
			SSMLGender:             v.SSMLGender,
			NaturalSampleRateHertz: v.NaturalSampleRateHertz,
		})
	}

	// The API already honoured the language code; only the client-side
	// filters remain.
	return tts.FilterVoices(voices, tts.VoiceQuery{
		NameContains: query.NameContains,
		Gender:       query.Gender,
	}), nil
}

// ---- Synthesize ----

// Synthesize performs one POST /v1/text:synthesize call and returns the
// decoded audio bytes.
func (g *Gateway) Synthesize(ctx context.Context, req tts.SynthesisRequest) ([]byte, error) {
	if req.Input.Text == "" && req.Input.SSML == "" {
		return nil, errors.New("google: synthesis input must carry text or ssml")
	}

	creds, err := g.credentials()
	if err != nil {
		return nil, err
	}

	body := synthesizeRequest{
		Input: synthesisInput{
			Text: req.Input.Text,
			SSML: req.Input.SSML,
		},
		Voice: voiceSelectionParams{
			LanguageCode: req.Voice.LanguageCode,
			Name:         req.Voice.Name,
		},
		AudioConfig: audioConfig{
			AudioEncoding: string(req.Audio.Encoding),
			SpeakingRate:  req.Audio.SpeakingRate,
			Pitch:         req.Audio.Pitch,
			VolumeGainDB:  req.Audio.VolumeGainDB,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("google: marshal synthesize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+synthesizeEndpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("google: create synthesize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	g.authorize(httpReq, creds)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("google: POST %s: %w", synthesizeEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.statusError(http.MethodPost, synthesizeEndpoint, resp)
	}

	var sr synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("google: decode synthesize response: %w", err)
	}
	if sr.AudioContent == "" {
		return nil, errors.New("google: synthesize response carried no audioContent")
	}

	audio, err := base64.StdEncoding.DecodeString(sr.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("google: decode audioContent: %w", err)
	}
	return audio, nil
}

// statusError maps a non-200 response to an error. Authentication statuses
// wrap tts.ErrNotAuthenticated; everything else carries the API's error
// message so the caller can surface it verbatim.
func (g *Gateway) statusError(method, endpoint string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("google: %s %s returned status %d: %w", method, endpoint, resp.StatusCode, tts.ErrNotAuthenticated)
	}

	var envelope apiError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("google: %s %s returned status %d: %s", method, endpoint, resp.StatusCode, envelope.Error.Message)
	}
	return fmt.Errorf("google: %s %s returned status %d: %s", method, endpoint, resp.StatusCode, bytes.TrimSpace(raw))
}
