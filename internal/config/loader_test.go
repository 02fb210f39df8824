package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/voxprobe/internal/config"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	s, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *s != config.Default() {
		t.Errorf("settings = %+v, want defaults", *s)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
language_code: sv-SE
voice_name: sv-SE-Wavenet-A
encoding: OGG_OPUS
speaking_rate: 1.25
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LanguageCode != "sv-SE" || s.VoiceName != "sv-SE-Wavenet-A" {
		t.Errorf("voice fields = %q/%q, want sv-SE/sv-SE-Wavenet-A", s.LanguageCode, s.VoiceName)
	}
	if s.Encoding != "OGG_OPUS" {
		t.Errorf("encoding = %q, want OGG_OPUS", s.Encoding)
	}
	if s.SpeakingRate != 1.25 {
		t.Errorf("speaking rate = %v, want 1.25", s.SpeakingRate)
	}
	// Keys absent from the file keep their defaults.
	if s.CacheTTLSeconds != 86400 {
		t.Errorf("cache ttl = %d, want 86400", s.CacheTTLSeconds)
	}
}

func TestLoadFromReader_UnknownKeysIgnored(t *testing.T) {
	t.Parallel()
	yaml := `
language_code: en-GB
some_future_key: whatever
nested:
  also: ignored
`
	s, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LanguageCode != "en-GB" {
		t.Errorf("language code = %q, want en-GB", s.LanguageCode)
	}
}

func TestLoadFromReader_NonMappingFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{"empty document", ""},
		{"bare scalar", "just a string"},
		{"sequence", "- one\n- two\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *s != config.Default() {
				t.Errorf("settings = %+v, want defaults", *s)
			}
		})
	}
}

func TestLoadFromReader_TypeErrorPropagates(t *testing.T) {
	t.Parallel()
	yaml := `
speaking_rate: fast
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for non-numeric speaking_rate, got nil")
	}
}

func TestLoadFromReader_MalformedYAMLPropagates(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("language_code: [unclosed"))
	if err == nil {
		t.Fatal("expected error for malformed yaml, got nil")
	}
}
