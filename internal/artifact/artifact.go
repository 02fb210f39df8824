// Package artifact names and writes synthesized audio files.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/MrWong99/voxprobe/pkg/tts"
)

// Artifact describes one written audio file.
type Artifact struct {
	Path string
	Size int64
	MIME string
}

const (
	slugMaxWords = 5
	slugMaxRunes = 40
)

var slugStrip = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// Slugify derives a filesystem-safe fragment from the input text: strip
// punctuation, keep the first five words, join with underscores, lowercase,
// and cap the length. The result may be empty for fully symbolic input;
// no placeholder is substituted.
func Slugify(text string) string {
	words := strings.Fields(slugStrip.ReplaceAllString(text, ""))
	if len(words) > slugMaxWords {
		words = words[:slugMaxWords]
	}
	slug := strings.ToLower(strings.Join(words, "_"))
	if runes := []rune(slug); len(runes) > slugMaxRunes {
		return string(runes[:slugMaxRunes])
	}
	return slug
}

// FileName builds the canonical output name from a UTC second-resolution
// stamp, the text slug, and the encoding's file extension.
func FileName(now time.Time, text, ext string) string {
	return now.UTC().Format("20060102_150405") + "_" + Slugify(text) + ext
}

// Write persists audio bytes at path, creating parent directories as
// needed. The MIME type derives from the file extension alone; the bytes
// are never inspected.
func Write(path string, data []byte) (Artifact, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("artifact: create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("artifact: write %q: %w", path, err)
	}
	return Artifact{
		Path: path,
		Size: int64(len(data)),
		MIME: tts.MIMEForExtension(filepath.Ext(path)),
	}, nil
}
