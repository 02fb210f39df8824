// Package cache persists the voice catalogue as a JSON snapshot on disk
// so repeated listings do not have to hit the remote service.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/MrWong99/voxprobe/pkg/tts"
)

// snapshot is the on-disk layout: one whole catalogue plus the time it was
// fetched, replaced wholesale on every save.
type snapshot struct {
	CachedAt float64     `json:"cached_at"`
	Voices   []tts.Voice `json:"voices"`
}

// Store reads and writes the voice snapshot at a fixed path.
// Concurrent writers follow last-writer-wins; there is no file locking.
type Store struct {
	path string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source. Tests use this to age a snapshot
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store bound to path.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns the snapshot location under the user cache directory,
// falling back to a directory next to the working directory when the user
// cache directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".voxprobe-cache", "voices.json")
	}
	return filepath.Join(dir, "voxprobe", "voices.json")
}

// Path returns the snapshot location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached catalogue when a snapshot exists, parses, and is no
// older than ttl. Every other condition reads as absent: a missing, corrupt,
// or expired snapshot all look the same to the caller. A fresh snapshot with
// no voices is a hit with an empty slice.
func (s *Store) Get(ttl time.Duration) ([]tts.Voice, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if epochSeconds(s.now())-snap.CachedAt > ttl.Seconds() {
		return nil, false
	}
	if snap.Voices == nil {
		return []tts.Voice{}, true
	}
	return snap.Voices, true
}

// Save replaces the snapshot with voices, stamped with the current time.
// Parent directories are created as needed. The write goes through a temp
// file in the same directory so a reader never observes a half-written
// snapshot.
func (s *Store) Save(voices []tts.Voice) error {
	snap := snapshot{
		CachedAt: epochSeconds(s.now()),
		Voices:   voices,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "voices-*.json")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: replace snapshot: %w", err)
	}
	return nil
}

// Clear deletes the snapshot. A snapshot that never existed is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: remove snapshot: %w", err)
	}
	return nil
}

// Info describes the stored snapshot for diagnostics, ignoring any TTL.
type Info struct {
	Path    string
	Exists  bool
	Corrupt bool
	Age     time.Duration
	Voices  int
}

// Stat reports the state of the snapshot file without the TTL check that
// [Store.Get] applies.
func (s *Store) Stat() Info {
	info := Info{Path: s.path}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return info
	}
	info.Exists = true
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		info.Corrupt = true
		return info
	}
	info.Age = time.Duration((epochSeconds(s.now()) - snap.CachedAt) * float64(time.Second))
	info.Voices = len(snap.Voices)
	return info
}

// epochSeconds keeps whole seconds exact so TTL comparisons at the boundary
// are deterministic.
func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
