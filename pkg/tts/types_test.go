package tts_test

import (
	"testing"

	"github.com/MrWong99/voxprobe/pkg/tts"
)

var catalogue = []tts.Voice{
	{Name: "en-US-Wavenet-D", LanguageCodes: []string{"en-US"}, SSMLGender: "MALE", NaturalSampleRateHertz: 24000},
	{Name: "en-US-Wavenet-F", LanguageCodes: []string{"en-US"}, SSMLGender: "FEMALE", NaturalSampleRateHertz: 24000},
	{Name: "de-DE-Standard-A", LanguageCodes: []string{"de-DE"}, SSMLGender: "FEMALE", NaturalSampleRateHertz: 24000},
	{Name: "en-GB-News-K", LanguageCodes: []string{"en-GB"}, SSMLGender: "FEMALE", NaturalSampleRateHertz: 24000},
}

func TestFilterVoices_LanguageSubstring(t *testing.T) {
	t.Parallel()
	got := tts.FilterVoices(catalogue, tts.VoiceQuery{LanguageCode: "en"})
	if len(got) != 3 {
		t.Fatalf("expected 3 en voices, got %d", len(got))
	}
	// Substring matching is case-insensitive.
	got = tts.FilterVoices(catalogue, tts.VoiceQuery{LanguageCode: "EN-gb"})
	if len(got) != 1 || got[0].Name != "en-GB-News-K" {
		t.Errorf("expected only en-GB-News-K, got %v", got)
	}
}

func TestFilterVoices_NameAndGender(t *testing.T) {
	t.Parallel()
	got := tts.FilterVoices(catalogue, tts.VoiceQuery{NameContains: "wavenet", Gender: "female"})
	if len(got) != 1 || got[0].Name != "en-US-Wavenet-F" {
		t.Errorf("expected only en-US-Wavenet-F, got %v", got)
	}
}

func TestFilterVoices_ZeroQueryReturnsAll(t *testing.T) {
	t.Parallel()
	got := tts.FilterVoices(catalogue, tts.VoiceQuery{})
	if len(got) != len(catalogue) {
		t.Errorf("zero query should return all %d voices, got %d", len(catalogue), len(got))
	}
}

func TestNewInput_SSMLDetection(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
		ssml bool
	}{
		{"plain text", "Hello, world!", false},
		{"ssml root tag", "<speak>Hello</speak>", true},
		{"ssml with leading whitespace", "  \n\t<speak>Hi</speak>", true},
		{"angle bracket but not speak", "<p>Hello</p>", false},
		{"speak mentioned mid-text", "say <speak> aloud", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tts.NewInput(tc.raw)
			if in.IsSSML() != tc.ssml {
				t.Errorf("NewInput(%q).IsSSML() = %v, want %v", tc.raw, in.IsSSML(), tc.ssml)
			}
			if tc.ssml && in.SSML != tc.raw {
				t.Errorf("SSML input should be passed through unmodified")
			}
			if !tc.ssml && in.Text != tc.raw {
				t.Errorf("plain input should be passed through unmodified")
			}
		})
	}
}
