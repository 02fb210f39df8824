// Package app wires the voxprobe subsystems into one orchestration layer.
//
// The App struct owns the gateway, the voice cache, the playback dispatcher
// and the effective settings. The CLI commands and the web UI both drive it;
// neither talks to the gateway or the cache directly.
//
// For testing, inject doubles via functional options (WithGateway,
// WithCache, WithPlayer, etc.). When an option is not provided, New creates
// real implementations: a Google gateway with credentials from the
// environment, the default on-disk voice cache, and the host playback
// dispatcher.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/voxprobe/internal/artifact"
	"github.com/MrWong99/voxprobe/internal/cache"
	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/internal/observe"
	"github.com/MrWong99/voxprobe/internal/player"
	"github.com/MrWong99/voxprobe/pkg/tts"
	"github.com/MrWong99/voxprobe/pkg/tts/google"
)

// DefaultOutputDir is where synthesized audio lands when no explicit output
// path is given.
const DefaultOutputDir = "outputs"

// suggestMaxDistance caps how far a cached voice name may be, in edit
// distance, from a configured name before the near-match hint is suppressed.
const suggestMaxDistance = 4

// VoiceSource reports where a voice listing was served from.
type VoiceSource string

const (
	// SourceCache means the listing came from the on-disk voice cache.
	SourceCache VoiceSource = "cache"

	// SourceRemote means the listing required a live service fetch.
	SourceRemote VoiceSource = "remote"
)

// VoicesQuery narrows a voice listing and controls cache interaction.
// Zero filter fields match everything.
type VoicesQuery struct {
	// Language filters by language code. It is forwarded to the service on a
	// live fetch and matched as a case-insensitive substring against each of
	// a cached voice's codes.
	Language string

	// Name keeps voices whose name contains this substring, case-insensitively.
	Name string

	// Gender keeps voices whose SSML gender equals this, case-insensitively.
	Gender string

	// Refresh drops the cache before listing, forcing a live fetch.
	Refresh bool
}

// filter converts the listing parameters to the shared catalogue filter.
func (q VoicesQuery) filter() tts.VoiceQuery {
	return tts.VoiceQuery{
		LanguageCode: q.Language,
		NameContains: q.Name,
		Gender:       q.Gender,
	}
}

// SynthesisJob is one synthesis request from a CLI command or the web UI.
type SynthesisJob struct {
	// Text is the raw input, plain or SSML.
	Text string

	// Overrides adjust the base settings for this job only.
	Overrides config.Overrides

	// OutputPath replaces the generated artifact path when non-empty.
	OutputPath string
}

// App carries every user-facing operation of the tester.
type App struct {
	settings  config.Settings
	gateway   tts.Gateway
	cache     *cache.Store
	player    *player.Dispatcher
	met       *observe.Metrics
	outputDir string

	// now stamps output file names; injected for deterministic tests.
	now func() time.Time
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithGateway injects a synthesis gateway instead of the Google client.
func WithGateway(g tts.Gateway) Option {
	return func(a *App) { a.gateway = g }
}

// WithCache injects a voice cache store instead of the default on-disk one.
func WithCache(c *cache.Store) Option {
	return func(a *App) { a.cache = c }
}

// WithPlayer injects a playback dispatcher.
func WithPlayer(p *player.Dispatcher) Option {
	return func(a *App) { a.player = p }
}

// WithMetrics injects a metrics bundle instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.met = m }
}

// WithOutputDir changes where generated artifacts are written.
func WithOutputDir(dir string) Option {
	return func(a *App) { a.outputDir = dir }
}

// WithClock injects the timestamp source used for output file names.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// ── New ───────────────────────────────────────────────────────────────────────

// New assembles an App around the given settings. Credential problems do not
// surface here: the Google gateway resolves its credentials lazily on the
// first remote call, so cache-served listings work without any.
func New(settings config.Settings, opts ...Option) *App {
	a := &App{
		settings:  settings,
		outputDir: DefaultOutputDir,
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}

	if a.gateway == nil {
		a.gateway = google.New(google.WithCredentialsFunc(config.LoadCredentials))
	}
	if a.cache == nil {
		a.cache = cache.New(cache.DefaultPath())
	}
	if a.player == nil {
		a.player = player.New()
	}
	if a.met == nil {
		a.met = observe.DefaultMetrics()
	}
	return a
}

// Settings returns a copy of the base settings the App was built with.
func (a *App) Settings() config.Settings {
	return a.settings
}

// Cache exposes the voice cache store for the cache subcommands.
func (a *App) Cache() *cache.Store {
	return a.cache
}

// OutputDir returns the directory generated artifacts are written to.
func (a *App) OutputDir() string {
	return a.outputDir
}

// ── Voices ────────────────────────────────────────────────────────────────────

// Voices lists synthesis voices, serving from the on-disk cache when a fresh
// snapshot exists and falling back to the service otherwise.
//
// On a live fetch with any filter active, the complete catalogue is fetched
// and cached (not the subset), so a later unfiltered listing is still served
// locally. The returned slice is always the filtered view.
func (a *App) Voices(ctx context.Context, q VoicesQuery) ([]tts.Voice, VoiceSource, error) {
	if q.Refresh {
		if err := a.cache.Clear(); err != nil {
			return nil, "", fmt.Errorf("app: clear voice cache: %w", err)
		}
	}

	filter := q.filter()
	if cached, ok := a.cache.Get(a.settings.CacheTTL()); ok {
		a.met.RecordVoiceList(ctx, string(SourceCache))
		return tts.FilterVoices(cached, filter), SourceCache, nil
	}

	voices, err := a.gateway.ListVoices(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	snapshot := voices
	if !filter.IsZero() {
		if snapshot, err = a.gateway.ListVoices(ctx, tts.VoiceQuery{}); err != nil {
			return nil, "", err
		}
	}
	if err := a.cache.Save(snapshot); err != nil {
		return nil, "", fmt.Errorf("app: save voice cache: %w", err)
	}

	a.met.RecordVoiceList(ctx, string(SourceRemote))
	return voices, SourceRemote, nil
}

// ── Synthesize ────────────────────────────────────────────────────────────────

// Synthesize turns one piece of text into an audio artifact on disk.
//
// Settings problems (ranges, unknown encoding) surface here, not at config
// load time: a bad stored value only matters once synthesis actually needs
// it. Blank input is rejected before any remote call.
func (a *App) Synthesize(ctx context.Context, job SynthesisJob) (artifact.Artifact, error) {
	if strings.TrimSpace(job.Text) == "" {
		return artifact.Artifact{}, tts.ErrEmptyInput
	}

	settings := a.settings
	settings.Apply(job.Overrides)
	if err := settings.Validate(); err != nil {
		return artifact.Artifact{}, fmt.Errorf("app: invalid settings: %w", err)
	}
	enc, err := settings.ResolveEncoding()
	if err != nil {
		return artifact.Artifact{}, err
	}

	a.suggestVoice(ctx, settings.VoiceName)

	req := tts.SynthesisRequest{
		Input: tts.NewInput(job.Text),
		Voice: tts.VoiceSelection{
			LanguageCode: settings.LanguageCode,
			Name:         settings.VoiceName,
		},
		Audio: tts.AudioConfig{
			Encoding:     enc,
			SpeakingRate: settings.SpeakingRate,
			Pitch:        settings.Pitch,
			VolumeGainDB: settings.VolumeGainDB,
		},
	}

	start := time.Now()
	data, err := a.gateway.Synthesize(ctx, req)
	if err != nil {
		a.met.RecordSynthesis(ctx, string(enc), "error", time.Since(start).Seconds())
		return artifact.Artifact{}, err
	}
	a.met.RecordSynthesis(ctx, string(enc), "ok", time.Since(start).Seconds())

	path := job.OutputPath
	if path == "" {
		path = filepath.Join(a.outputDir, artifact.FileName(a.now(), job.Text, enc.Extension()))
	}
	art, err := artifact.Write(path, data)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("app: %w", err)
	}
	return art, nil
}

// suggestVoice logs a near-match hint when the configured voice name is
// absent from the cached catalogue. Advisory only: the service stays the
// authority on which names exist, so synthesis proceeds regardless.
func (a *App) suggestVoice(ctx context.Context, name string) {
	if name == "" {
		return
	}
	voices, ok := a.cache.Get(a.settings.CacheTTL())
	if !ok || len(voices) == 0 {
		return
	}

	best := ""
	bestDist := -1
	for _, v := range voices {
		if strings.EqualFold(v.Name, name) {
			return
		}
		d := matchr.Levenshtein(v.Name, name)
		if bestDist < 0 || d < bestDist {
			best, bestDist = v.Name, d
		}
	}
	if bestDist >= 0 && bestDist <= suggestMaxDistance {
		observe.Logger(ctx).Warn("voice not in cached catalogue",
			"voice", name,
			"suggestion", best,
		)
	}
}

// ── Play ──────────────────────────────────────────────────────────────────────

// Play hands an audio file to the host playback chain and records the
// outcome. Playback problems never become errors; the dispatcher reports
// them on its own writers and falls back to printing the file path.
func (a *App) Play(ctx context.Context, path string) player.Outcome {
	host := a.player.DetectHost()
	outcome := a.player.Play(ctx, path)
	a.met.RecordPlayback(ctx, string(host), string(outcome))
	return outcome
}
