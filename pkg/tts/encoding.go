package tts

import (
	"fmt"
	"strings"
)

// Encoding is the output audio encoding requested from the synthesis
// service. Its string value is exactly the wire name the REST API expects
// in the audioConfig.audioEncoding field.
type Encoding string

const (
	EncodingLinear16 Encoding = "LINEAR16"
	EncodingMP3      Encoding = "MP3"
	EncodingOggOpus  Encoding = "OGG_OPUS"
	EncodingMulaw    Encoding = "MULAW"
	EncodingAlaw     Encoding = "ALAW"
)

// encodingExtensions maps each valid encoding to its output file extension.
var encodingExtensions = map[Encoding]string{
	EncodingLinear16: ".wav",
	EncodingMP3:      ".mp3",
	EncodingOggOpus:  ".ogg",
	EncodingMulaw:    ".wav",
	EncodingAlaw:     ".wav",
}

// extensionMIMEs maps output file extensions to their MIME types.
var extensionMIMEs = map[string]string{
	".wav": "audio/wav",
	".mp3": "audio/mpeg",
	".ogg": "audio/ogg",
}

// Encodings returns the valid encodings in display order.
func Encodings() []Encoding {
	return []Encoding{EncodingLinear16, EncodingMP3, EncodingOggOpus, EncodingMulaw, EncodingAlaw}
}

// ParseEncoding maps a case-insensitive encoding name to its Encoding value.
// Unknown names return an error wrapping ErrUnknownEncoding that names the
// valid set. This is the single validation point for encodings; settings
// carry the raw string and resolve it lazily at first use.
func ParseEncoding(name string) (Encoding, error) {
	e := Encoding(strings.ToUpper(name))
	if _, ok := encodingExtensions[e]; !ok {
		return "", fmt.Errorf("tts: %w %q: choose from %s", ErrUnknownEncoding, name, encodingNames())
	}
	return e, nil
}

// IsValid reports whether e is one of the recognised encodings.
func (e Encoding) IsValid() bool {
	_, ok := encodingExtensions[e]
	return ok
}

// Extension returns the output file extension for e (e.g., ".mp3").
// Unrecognised values fall back to ".bin".
func (e Encoding) Extension() string {
	if ext, ok := encodingExtensions[e]; ok {
		return ext
	}
	return ".bin"
}

// MIME returns the MIME type for audio in this encoding, derived from the
// encoding alone, never from file inspection.
func (e Encoding) MIME() string {
	return MIMEForExtension(e.Extension())
}

// MIMEForExtension returns the MIME type for an output file extension.
// Unknown extensions yield application/octet-stream.
func MIMEForExtension(ext string) string {
	if m, ok := extensionMIMEs[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}

// encodingNames renders the valid set for error messages.
func encodingNames() string {
	names := make([]string, 0, len(encodingExtensions))
	for _, e := range Encodings() {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}
