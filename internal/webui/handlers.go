package webui

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/internal/observe"
	"github.com/MrWong99/voxprobe/pkg/tts"
)

// pageData feeds the embedded form template. The form fields are kept as
// strings so a POST re-renders exactly what the user typed.
type pageData struct {
	Text     string
	Language string
	Voice    string
	Encoding string
	Rate     string
	Pitch    string
	Volume   string

	// Voice browser state.
	Languages   []string
	VoiceFilter string
	Voices      []tts.Voice
	VoicesErr   string

	Encodings []tts.Encoding

	Error  string
	Result *pageResult
}

// pageResult is the success banner with the inline player.
type pageResult struct {
	Name   string
	SizeKB string

	// AudioSrc is a data URI built from our own MIME type and base64
	// payload; template.URL keeps html/template from rejecting the data
	// scheme.
	AudioSrc template.URL
}

// defaultPage seeds the form with the configured settings.
func (s *Server) defaultPage() pageData {
	st := s.app.Settings()
	return pageData{
		Language:  st.LanguageCode,
		Voice:     st.VoiceName,
		Encoding:  st.Encoding,
		Rate:      formatFloat(st.SpeakingRate),
		Pitch:     formatFloat(st.Pitch),
		Volume:    formatFloat(st.VolumeGainDB),
		Encodings: tts.Encodings(),
	}
}

// loadVoices fills the voice browser from the full catalogue, narrowing the
// select to one language when a filter is active. A fetch problem becomes a
// banner, never a failed page: the form works without a catalogue.
func (s *Server) loadVoices(ctx context.Context, data *pageData, filter string) {
	voices, _, err := s.app.Voices(ctx, app.VoicesQuery{})
	if err != nil {
		data.VoicesErr = fmt.Sprintf("Failed to fetch voices: %v", err)
		return
	}

	data.VoiceFilter = filter
	data.Languages = languageCodes(voices)
	if filter != "" {
		narrowed := make([]tts.Voice, 0, len(voices))
		for _, v := range voices {
			if slices.Contains(v.LanguageCodes, filter) {
				narrowed = append(narrowed, v)
			}
		}
		voices = narrowed
	}
	data.Voices = voices
}

// handleIndex renders the form page. The optional language query parameter
// narrows the voice browser.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.defaultPage()
	s.loadVoices(r.Context(), &data, r.URL.Query().Get("language"))
	s.render(w, http.StatusOK, data)
}

// handleSynthesize turns the posted form into one synthesis job and
// re-renders the page with either the playable result or a banner.
func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	data := s.defaultPage()
	data.Text = r.PostFormValue("text")
	data.Language = r.PostFormValue("language")
	data.Voice = r.PostFormValue("voice")
	data.Encoding = r.PostFormValue("encoding")
	data.Rate = r.PostFormValue("rate")
	data.Pitch = r.PostFormValue("pitch")
	data.Volume = r.PostFormValue("volume")
	s.loadVoices(r.Context(), &data, "")

	if strings.TrimSpace(data.Text) == "" {
		data.Error = "Please enter some text."
		s.render(w, http.StatusOK, data)
		return
	}

	overrides, err := formOverrides(&data)
	if err != nil {
		data.Error = err.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}

	art, err := s.app.Synthesize(r.Context(), app.SynthesisJob{
		Text:      data.Text,
		Overrides: overrides,
	})
	if err != nil {
		data.Error = "Synthesis failed: " + err.Error()
		s.render(w, http.StatusOK, data)
		return
	}

	audio, err := os.ReadFile(art.Path)
	if err != nil {
		data.Error = "Synthesis failed: " + err.Error()
		s.render(w, http.StatusOK, data)
		return
	}

	data.Result = &pageResult{
		Name:     filepath.Base(art.Path),
		SizeKB:   fmt.Sprintf("%.1f", float64(art.Size)/1024),
		AudioSrc: template.URL("data:" + art.MIME + ";base64," + base64.StdEncoding.EncodeToString(audio)),
	}
	s.render(w, http.StatusOK, data)
}

// handleAudio serves a synthesized artifact by bare file name. Anything that
// could leave the outputs directory is rejected.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		http.Error(w, "invalid artifact name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.app.OutputDir(), name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", tts.MIMEForExtension(filepath.Ext(name)))
	http.ServeFile(w, r, path)
}

// handleRefresh drops the voice cache, refetches the catalogue and sends the
// browser back to the form. A fetch problem is logged and shows up on the
// reloaded page instead.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.app.Voices(r.Context(), app.VoicesQuery{Refresh: true}); err != nil {
		observe.Logger(r.Context()).Warn("voice refresh failed", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render executes the page template into a buffer first so a template
// problem becomes a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		slog.Error("render page", "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formOverrides converts the posted field values into settings overrides.
// Every field overrides its setting, mirroring how the form is seeded from
// the settings in the first place.
func formOverrides(d *pageData) (config.Overrides, error) {
	rate, err := strconv.ParseFloat(d.Rate, 64)
	if err != nil {
		return config.Overrides{}, fmt.Errorf("speaking rate %q is not a number", d.Rate)
	}
	pitch, err := strconv.ParseFloat(d.Pitch, 64)
	if err != nil {
		return config.Overrides{}, fmt.Errorf("pitch %q is not a number", d.Pitch)
	}
	volume, err := strconv.ParseFloat(d.Volume, 64)
	if err != nil {
		return config.Overrides{}, fmt.Errorf("volume %q is not a number", d.Volume)
	}

	return config.Overrides{
		LanguageCode: &d.Language,
		VoiceName:    &d.Voice,
		Encoding:     &d.Encoding,
		SpeakingRate: &rate,
		Pitch:        &pitch,
		VolumeGainDB: &volume,
	}, nil
}

// languageCodes returns the sorted distinct language codes in the catalogue.
func languageCodes(voices []tts.Voice) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, v := range voices {
		for _, lc := range v.LanguageCodes {
			if !seen[lc] {
				seen[lc] = true
				codes = append(codes, lc)
			}
		}
	}
	slices.Sort(codes)
	return codes
}

// formatFloat renders a settings number without trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
