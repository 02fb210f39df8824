// Package config provides the synthesis settings schema, the YAML loader,
// and credential resolution for voxprobe.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrWong99/voxprobe/pkg/tts"
)

// Settings holds the synthesis defaults applied to every request.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader];
// individual fields can be replaced per invocation via [Overrides].
type Settings struct {
	// LanguageCode is a BCP-47 language tag such as "en-US" or "de-DE".
	LanguageCode string `yaml:"language_code"`

	// VoiceName selects a specific voice (e.g., "en-US-Wavenet-D").
	// Empty lets the service choose a default voice for the language.
	VoiceName string `yaml:"voice_name"`

	// Encoding names the output audio encoding (LINEAR16, MP3, OGG_OPUS,
	// MULAW, ALAW). It is kept as a plain string and only validated when
	// [Settings.ResolveEncoding] is called, so an unused bad value never
	// blocks unrelated operations.
	Encoding string `yaml:"encoding"`

	// SpeakingRate adjusts speed in the range [0.25, 4.0]. 1.0 is normal.
	SpeakingRate float64 `yaml:"speaking_rate"`

	// Pitch shifts the voice in semitones, range [-20.0, 20.0].
	Pitch float64 `yaml:"pitch"`

	// VolumeGainDB adjusts loudness in dB, range [-96.0, 16.0].
	VolumeGainDB float64 `yaml:"volume_gain_db"`

	// CacheTTLSeconds is the maximum age of the voice catalogue snapshot
	// before a listing goes back to the remote service.
	CacheTTLSeconds int64 `yaml:"cache_ttl_seconds"`
}

// Default returns the settings used when no config file is present.
func Default() Settings {
	return Settings{
		LanguageCode:    "en-US",
		Encoding:        string(tts.EncodingMP3),
		SpeakingRate:    1.0,
		CacheTTLSeconds: 86400,
	}
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// ResolveEncoding parses the configured encoding name. This is the only
// place the encoding is validated; loading never checks it.
func (s Settings) ResolveEncoding() (tts.Encoding, error) {
	return tts.ParseEncoding(s.Encoding)
}

// Validate checks that the numeric fields are within the ranges the
// synthesis service accepts. It returns a joined error listing every
// violation found. The encoding is deliberately not checked here; see
// [Settings.ResolveEncoding].
func (s Settings) Validate() error {
	var errs []error
	if s.SpeakingRate < 0.25 || s.SpeakingRate > 4.0 {
		errs = append(errs, fmt.Errorf("speaking_rate %.2f is out of range [0.25, 4.0]", s.SpeakingRate))
	}
	if s.Pitch < -20.0 || s.Pitch > 20.0 {
		errs = append(errs, fmt.Errorf("pitch %.2f is out of range [-20.0, 20.0]", s.Pitch))
	}
	if s.VolumeGainDB < -96.0 || s.VolumeGainDB > 16.0 {
		errs = append(errs, fmt.Errorf("volume_gain_db %.2f is out of range [-96.0, 16.0]", s.VolumeGainDB))
	}
	if s.CacheTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl_seconds %d must not be negative", s.CacheTTLSeconds))
	}
	return errors.Join(errs...)
}

// Overrides carries per-invocation replacements for [Settings] fields.
// A nil pointer leaves the corresponding field untouched; a non-nil pointer
// replaces it wholesale.
type Overrides struct {
	LanguageCode    *string
	VoiceName       *string
	Encoding        *string
	SpeakingRate    *float64
	Pitch           *float64
	VolumeGainDB    *float64
	CacheTTLSeconds *int64
}

// Apply replaces every field of s for which o carries a non-nil pointer.
func (s *Settings) Apply(o Overrides) {
	if o.LanguageCode != nil {
		s.LanguageCode = *o.LanguageCode
	}
	if o.VoiceName != nil {
		s.VoiceName = *o.VoiceName
	}
	if o.Encoding != nil {
		s.Encoding = *o.Encoding
	}
	if o.SpeakingRate != nil {
		s.SpeakingRate = *o.SpeakingRate
	}
	if o.Pitch != nil {
		s.Pitch = *o.Pitch
	}
	if o.VolumeGainDB != nil {
		s.VolumeGainDB = *o.VolumeGainDB
	}
	if o.CacheTTLSeconds != nil {
		s.CacheTTLSeconds = *o.CacheTTLSeconds
	}
}
