package tts

import "strings"

// Voice describes one synthesis voice from the provider's catalogue.
//
// The JSON tags match the on-disk voice cache format; the REST wire format
// uses different field names and is mapped by the gateway implementation.
type Voice struct {
	// Name is the provider-unique voice identifier (e.g., "en-US-Wavenet-D").
	Name string `json:"name"`

	// LanguageCodes lists the BCP-47 locales this voice supports. Non-empty.
	LanguageCodes []string `json:"language_codes"`

	// SSMLGender is the provider's gender enum name: MALE, FEMALE, NEUTRAL,
	// or SSML_VOICE_GENDER_UNSPECIFIED.
	SSMLGender string `json:"ssml_gender"`

	// NaturalSampleRateHertz is the voice's native sample rate.
	NaturalSampleRateHertz int `json:"natural_sample_rate_hertz"`
}

// VoiceQuery narrows a voice listing. Zero fields match everything.
type VoiceQuery struct {
	// LanguageCode is forwarded to the remote service on a live fetch. When
	// filtering an already-fetched list it matches as a case-insensitive
	// substring against each of the voice's language codes.
	LanguageCode string

	// NameContains matches as a case-insensitive substring of the voice name.
	NameContains string

	// Gender matches the SSML gender name, case-insensitively.
	Gender string
}

// IsZero reports whether the query has no filters set.
func (q VoiceQuery) IsZero() bool {
	return q.LanguageCode == "" && q.NameContains == "" && q.Gender == ""
}

// Matches reports whether v passes every filter in q.
func (q VoiceQuery) Matches(v Voice) bool {
	if q.LanguageCode != "" {
		want := strings.ToLower(q.LanguageCode)
		found := false
		for _, lc := range v.LanguageCodes {
			if strings.Contains(strings.ToLower(lc), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.NameContains != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(q.NameContains)) {
		return false
	}
	if q.Gender != "" && !strings.EqualFold(v.SSMLGender, q.Gender) {
		return false
	}
	return true
}

// FilterVoices returns the subset of voices matching q, preserving order.
func FilterVoices(voices []Voice, q VoiceQuery) []Voice {
	if q.IsZero() {
		return voices
	}
	out := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if q.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// Input is the text to synthesise. Exactly one of Text or SSML is set.
type Input struct {
	Text string
	SSML string
}

// NewInput classifies raw input as SSML or plain text. Input whose trimmed
// form starts with the <speak> root tag is treated as SSML; everything else
// is plain text. The classification happens here, on the caller's side: the
// remote service is always told explicitly which form it received.
func NewInput(raw string) Input {
	if strings.HasPrefix(strings.TrimSpace(raw), "<speak>") {
		return Input{SSML: raw}
	}
	return Input{Text: raw}
}

// IsSSML reports whether the input carries SSML rather than plain text.
func (in Input) IsSSML() bool {
	return in.SSML != ""
}

// VoiceSelection names the voice to synthesise with. An empty Name lets the
// provider choose a default voice for the language.
type VoiceSelection struct {
	LanguageCode string
	Name         string
}

// AudioConfig carries the output audio parameters for one synthesis call.
type AudioConfig struct {
	Encoding     Encoding
	SpeakingRate float64
	Pitch        float64
	VolumeGainDB float64
}

// SynthesisRequest is one complete synthesis invocation.
type SynthesisRequest struct {
	Input Input
	Voice VoiceSelection
	Audio AudioConfig
}
