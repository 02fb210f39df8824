// Package player launches whatever audio player the host OS provides to
// play a synthesized file, degrading to a manual-open message when nothing
// suitable exists. Playback problems are reported to the user but never
// returned as errors.
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Host classifies the execution environment for playback purposes.
type Host string

const (
	HostWSL     Host = "wsl"
	HostDarwin  Host = "darwin"
	HostLinux   Host = "linux"
	HostWindows Host = "windows"
	HostOther   Host = "other"
)

// Outcome reports how a playback attempt ended.
type Outcome string

const (
	// OutcomePlayed means a player ran and exited cleanly.
	OutcomePlayed Outcome = "played"

	// OutcomePlayedWithWarning means a player ran but exited non-zero.
	// The warning is printed; the caller treats this as success.
	OutcomePlayedWithWarning Outcome = "played_with_warning"

	// OutcomeManualFallback means no player was available (or the chosen
	// one failed to launch) and the user was asked to open the file.
	OutcomeManualFallback Outcome = "manual_fallback"
)

// Runner executes a command and reports its stdout and exit code. A non-nil
// error means the command could not be started at all; a process that ran
// and exited non-zero is reported through exitCode with a nil error.
type Runner func(ctx context.Context, name string, args ...string) (stdout string, exitCode int, err error)

// Shells are assumed present on their platform and are never probed,
// mirroring how Windows playback works without PATH lookups.
var shellExes = map[string]bool{
	"cmd":            true,
	"cmd.exe":        true,
	"powershell":     true,
	"powershell.exe": true,
}

// Dispatcher picks and runs an audio player for a file. The zero value is
// not usable; construct with [New]. All process and OS probes are
// injectable so the full candidate logic is testable on any machine.
type Dispatcher struct {
	lookPath        func(string) (string, error)
	run             Runner
	goos            string
	procVersionPath string
	out             io.Writer
	errOut          io.Writer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLookPath replaces the PATH probe used to find candidate players.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Dispatcher) {
		d.lookPath = fn
	}
}

// WithRunner replaces the process runner.
func WithRunner(run Runner) Option {
	return func(d *Dispatcher) {
		d.run = run
	}
}

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(d *Dispatcher) {
		d.goos = goos
	}
}

// WithProcVersionPath overrides the file consulted for WSL detection.
func WithProcVersionPath(path string) Option {
	return func(d *Dispatcher) {
		d.procVersionPath = path
	}
}

// WithOutput redirects user-facing playback messages.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// WithErrorOutput redirects playback warnings.
func WithErrorOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.errOut = w
	}
}

// New creates a Dispatcher for the current host.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		lookPath:        exec.LookPath,
		run:             runCommand,
		goos:            runtime.GOOS,
		procVersionPath: "/proc/version",
		out:             os.Stdout,
		errOut:          os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectHost resolves the playback environment. WSL is checked before the
// plain GOOS switch because it reports itself as linux; an unreadable
// version file simply means not WSL.
func (d *Dispatcher) DetectHost() Host {
	if data, err := os.ReadFile(d.procVersionPath); err == nil &&
		strings.Contains(strings.ToLower(string(data)), "microsoft") {
		return HostWSL
	}
	switch d.goos {
	case "darwin":
		return HostDarwin
	case "linux":
		return HostLinux
	case "windows":
		return HostWindows
	}
	return HostOther
}

// Play tries to play the file at path with the best mechanism available on
// the current host. It always returns an outcome and never an error.
func (d *Dispatcher) Play(ctx context.Context, path string) Outcome {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	switch d.DetectHost() {
	case HostWSL:
		return d.playWSL(ctx, abs)
	case HostDarwin:
		return d.invoke(ctx, abs, "afplay", abs)
	case HostLinux:
		return d.playLinux(ctx, abs)
	case HostWindows:
		return d.playWindows(ctx, abs)
	}
	return d.manualFallback(abs)
}

// ── Platform chains ───────────────────────────────────────────────────────────

// playWSL plays through Windows-side tools. The path is translated with
// wslpath first; when translation fails the local path is passed through
// unchanged.
func (d *Dispatcher) playWSL(ctx context.Context, abs string) Outcome {
	winPath := d.wslToWindowsPath(ctx, abs)

	if _, err := d.lookPath("powershell.exe"); err == nil {
		if isWAV(abs) {
			psCmd := fmt.Sprintf(`(New-Object Media.SoundPlayer "%s").PlaySync()`, winPath)
			return d.invoke(ctx, abs, "powershell.exe", "-Command", psCmd)
		}
		return d.invoke(ctx, abs, "powershell.exe", "-Command", fmt.Sprintf(`Start-Process "%s"`, winPath))
	}
	if _, err := d.lookPath("cmd.exe"); err == nil {
		return d.invoke(ctx, abs, "cmd.exe", "/c", "start", "", winPath)
	}
	return d.manualFallback(abs)
}

func (d *Dispatcher) playLinux(ctx context.Context, abs string) Outcome {
	// aplay first for WAV, generic players for everything else.
	if isWAV(abs) {
		if _, err := d.lookPath("aplay"); err == nil {
			return d.invoke(ctx, abs, "aplay", abs)
		}
	}
	for _, exe := range []string{"mpv", "ffplay", "paplay", "xdg-open"} {
		if _, err := d.lookPath(exe); err != nil {
			continue
		}
		var args []string
		if exe == "ffplay" {
			args = append(args, "-nodisp", "-autoexit")
		}
		args = append(args, abs)
		return d.invoke(ctx, abs, exe, args...)
	}
	return d.manualFallback(abs)
}

func (d *Dispatcher) playWindows(ctx context.Context, abs string) Outcome {
	if isWAV(abs) {
		psCmd := fmt.Sprintf(`(New-Object Media.SoundPlayer "%s").PlaySync()`, abs)
		return d.invoke(ctx, abs, "powershell", "-Command", psCmd)
	}
	return d.invoke(ctx, abs, "cmd", "/c", "start", "", abs)
}

// ── Internals ─────────────────────────────────────────────────────────────────

// invoke announces and synchronously runs one player. The candidate search
// does not resume after a launch failure; the user gets the manual message
// instead.
func (d *Dispatcher) invoke(ctx context.Context, abs, exe string, args ...string) Outcome {
	if !shellExes[exe] {
		if _, err := d.lookPath(exe); err != nil {
			return d.manualFallback(abs)
		}
	}
	fmt.Fprintf(d.out, "▶  Playing with %s …\n", exe)
	_, code, err := d.run(ctx, exe, args...)
	if err != nil {
		return d.manualFallback(abs)
	}
	if code != 0 {
		fmt.Fprintf(d.errOut, "⚠  Playback exited with code %d.\n", code)
		return OutcomePlayedWithWarning
	}
	return OutcomePlayed
}

func (d *Dispatcher) manualFallback(abs string) Outcome {
	fmt.Fprintf(d.out, "ℹ  Could not find an audio player.\n   Open the file manually:\n     %s\n", abs)
	return OutcomeManualFallback
}

// wslToWindowsPath converts a Linux path for Windows-side tools.
func (d *Dispatcher) wslToWindowsPath(ctx context.Context, abs string) string {
	out, code, err := d.run(ctx, "wslpath", "-w", abs)
	if err != nil || code != 0 {
		return abs
	}
	if win := strings.TrimSpace(out); win != "" {
		return win
	}
	return abs
}

func isWAV(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".wav"
}

// runCommand is the default Runner backed by os/exec.
func runCommand(ctx context.Context, name string, args ...string) (string, int, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), exitErr.ExitCode(), nil
		}
		return "", 0, err
	}
	return stdout.String(), 0, nil
}
