package webui_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/internal/cache"
	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/internal/webui"
	"github.com/MrWong99/voxprobe/pkg/tts"
	"github.com/MrWong99/voxprobe/pkg/tts/mock"
)

var catalog = []tts.Voice{
	{Name: "en-US-Wavenet-D", LanguageCodes: []string{"en-US"}, SSMLGender: "MALE", NaturalSampleRateHertz: 24000},
	{Name: "de-DE-Standard-A", LanguageCodes: []string{"de-DE"}, SSMLGender: "FEMALE", NaturalSampleRateHertz: 24000},
}

// newTestServer wires a server around an app with a mock gateway, a fresh
// cache and a temp outputs directory.
func newTestServer(t *testing.T, gw *mock.Gateway) (*webui.Server, string) {
	t.Helper()
	outputs := t.TempDir()
	a := app.New(config.Default(),
		app.WithGateway(gw),
		app.WithCache(cache.New(filepath.Join(t.TempDir(), "voices.json"))),
		app.WithOutputDir(outputs),
	)
	return webui.New(a), outputs
}

// do runs one request through the route table.
func do(t *testing.T, s *webui.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// synthesizeForm returns a complete, valid form for POST /synthesize.
func synthesizeForm(text string) url.Values {
	return url.Values{
		"text":     {text},
		"language": {"en-US"},
		"voice":    {""},
		"encoding": {"MP3"},
		"rate":     {"1"},
		"pitch":    {"0"},
		"volume":   {"0"},
	}
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndex_RendersForm(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{ListVoicesResult: catalog})

	rec := do(t, s, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`name="text"`,
		"(default)",
		"en-US-Wavenet-D",
		"de-DE-Standard-A",
		`<option value="MP3" selected>`,
		`value="en-US"`,
		"2 voice(s)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestIndex_LanguageFilterNarrowsVoices(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{ListVoicesResult: catalog})

	rec := do(t, s, httptest.NewRequest("GET", "/?language=de-DE", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "de-DE-Standard-A") {
		t.Error("filtered page missing the de-DE voice")
	}
	if strings.Contains(body, "en-US-Wavenet-D") {
		t.Error("filtered page still lists the en-US voice")
	}
	if !strings.Contains(body, "1 voice(s)") {
		t.Error("voice count not narrowed")
	}
}

func TestIndex_VoiceFetchFailureStillRenders(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{ListVoicesErr: errors.New("boom")})

	rec := do(t, s, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Failed to fetch voices") {
		t.Error("fetch failure banner missing")
	}
	if !strings.Contains(body, `name="text"`) {
		t.Error("form missing from the error page")
	}
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{ListVoicesResult: catalog})

	rec := do(t, s, httptest.NewRequest("GET", "/nonsense", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSynthesize_RendersPlayableResult(t *testing.T) {
	gw := &mock.Gateway{ListVoicesResult: catalog, SynthesizeResult: []byte("fake-mp3")}
	s, outputs := newTestServer(t, gw)

	rec := do(t, s, postForm("/synthesize", synthesizeForm("Hello, World!")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Saved to") {
		t.Error("success banner missing")
	}
	if !strings.Contains(body, "data:audio/mpeg;base64,") {
		t.Error("inline audio data URI missing")
	}
	if !strings.Contains(body, `href="/audio/`) {
		t.Error("download link missing")
	}

	entries, err := os.ReadDir(outputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".mp3" {
		t.Errorf("outputs dir = %v, want one .mp3 artifact", entries)
	}
}

func TestSynthesize_BlankTextShowsWarningNot500(t *testing.T) {
	gw := &mock.Gateway{ListVoicesResult: catalog, SynthesizeResult: []byte("audio")}
	s, _ := newTestServer(t, gw)

	rec := do(t, s, postForm("/synthesize", synthesizeForm("   ")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Please enter some text.") {
		t.Error("blank-text warning missing")
	}
	if len(gw.SynthesizeCalls) != 0 {
		t.Errorf("gateway called %d times for blank text, want 0", len(gw.SynthesizeCalls))
	}
}

func TestSynthesize_FormBecomesOverrides(t *testing.T) {
	gw := &mock.Gateway{ListVoicesResult: catalog, SynthesizeResult: []byte("audio")}
	s, _ := newTestServer(t, gw)

	form := url.Values{
		"text":     {"Guten Tag"},
		"language": {"de-DE"},
		"voice":    {"de-DE-Standard-A"},
		"encoding": {"OGG_OPUS"},
		"rate":     {"1.5"},
		"pitch":    {"-2"},
		"volume":   {"3"},
	}
	rec := do(t, s, postForm("/synthesize", form))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if len(gw.SynthesizeCalls) != 1 {
		t.Fatalf("gateway called %d times, want 1", len(gw.SynthesizeCalls))
	}
	req := gw.SynthesizeCalls[0].Request
	if req.Voice.LanguageCode != "de-DE" || req.Voice.Name != "de-DE-Standard-A" {
		t.Errorf("voice selection = %+v, want de-DE / de-DE-Standard-A", req.Voice)
	}
	if req.Audio.Encoding != tts.EncodingOggOpus {
		t.Errorf("encoding = %q, want OGG_OPUS", req.Audio.Encoding)
	}
	if req.Audio.SpeakingRate != 1.5 || req.Audio.Pitch != -2 || req.Audio.VolumeGainDB != 3 {
		t.Errorf("audio config = %+v, want rate 1.5, pitch -2, volume 3", req.Audio)
	}
	if !strings.Contains(rec.Body.String(), "data:audio/ogg;base64,") {
		t.Error("inline audio should carry the ogg MIME type")
	}
}

func TestSynthesize_BadNumberIs400(t *testing.T) {
	gw := &mock.Gateway{ListVoicesResult: catalog, SynthesizeResult: []byte("audio")}
	s, _ := newTestServer(t, gw)

	form := synthesizeForm("Hello")
	form.Set("rate", "fast")
	rec := do(t, s, postForm("/synthesize", form))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "is not a number") {
		t.Error("number parse banner missing")
	}
	if len(gw.SynthesizeCalls) != 0 {
		t.Errorf("gateway called %d times for a bad number, want 0", len(gw.SynthesizeCalls))
	}
}

func TestSynthesize_GatewayFailureShowsBanner(t *testing.T) {
	gw := &mock.Gateway{ListVoicesResult: catalog, SynthesizeErr: errors.New("quota exceeded")}
	s, _ := newTestServer(t, gw)

	rec := do(t, s, postForm("/synthesize", synthesizeForm("Hello")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Synthesis failed:") || !strings.Contains(body, "quota exceeded") {
		t.Errorf("failure banner missing, got: %s", body)
	}
}

func TestAudio_ServesArtifact(t *testing.T) {
	s, outputs := newTestServer(t, &mock.Gateway{})
	if err := os.WriteFile(filepath.Join(outputs, "clip.mp3"), []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, httptest.NewRequest("GET", "/audio/clip.mp3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "mp3-bytes" {
		t.Errorf("body = %q, want the artifact bytes", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
}

func TestAudio_MissingArtifactIs404(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{})

	rec := do(t, s, httptest.NewRequest("GET", "/audio/nope.mp3", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAudio_RejectsTraversal(t *testing.T) {
	s, outputs := newTestServer(t, &mock.Gateway{})
	if err := os.WriteFile(filepath.Join(outputs, "clip.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []string{
		"/audio/..%2Fclip.mp3",
		"/audio/%2e%2e",
		"/audio/..%5Cclip.mp3",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest("GET", path, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestRefresh_RedirectsHomeAndRefetches(t *testing.T) {
	gw := &mock.Gateway{ListVoicesResult: catalog}
	s, _ := newTestServer(t, gw)

	// Seed the cache, then make sure refresh bypasses it.
	if rec := do(t, s, httptest.NewRequest("GET", "/", nil)); rec.Code != http.StatusOK {
		t.Fatalf("seed request status = %d", rec.Code)
	}
	gw.Reset()

	rec := do(t, s, httptest.NewRequest("POST", "/voices/refresh", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if len(gw.ListVoicesCalls) == 0 {
		t.Error("refresh did not hit the gateway")
	}
}

func TestHealthz_AlwaysOK(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{})

	rec := do(t, s, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyz_ReflectsCredentials(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{})

	t.Setenv("GOOGLE_TTS_ACCESS_TOKEN", "")
	t.Setenv("GOOGLE_TTS_API_KEY", "test-key")
	if rec := do(t, s, httptest.NewRequest("GET", "/readyz", nil)); rec.Code != http.StatusOK {
		t.Errorf("with credentials: status = %d, want %d", rec.Code, http.StatusOK)
	}

	t.Setenv("GOOGLE_TTS_API_KEY", "")
	rec := do(t, s, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("without credentials: status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rec.Body.String(), "credentials") {
		t.Error("readyz body does not name the failing check")
	}
}

func TestMetrics_Exposed(t *testing.T) {
	s, _ := newTestServer(t, &mock.Gateway{})

	rec := do(t, s, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing the default Go collector")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a := app.New(config.Default(),
		app.WithGateway(&mock.Gateway{}),
		app.WithCache(cache.New(filepath.Join(t.TempDir(), "voices.json"))),
		app.WithOutputDir(t.TempDir()),
	)
	srv := webui.New(a, webui.WithAddr("127.0.0.1:0"), webui.WithShutdownGrace(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	// Give ListenAndServe a moment to bind.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() = %v, want nil after graceful shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
