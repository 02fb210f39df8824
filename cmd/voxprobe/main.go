// Command voxprobe is a command-line tester for the Google Cloud
// Text-to-Speech service: it lists voices, synthesizes text or SSML to audio
// files, plays them back, and can serve a small local web UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/internal/config"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Persistent flag values shared by every subcommand.
var (
	configPath string
	logLevel   string
)

// errReported marks a failure whose message the command already printed.
// run only turns it into the exit code.
var errReported = errors.New("already reported")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "voxprobe: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "voxprobe",
		Short: "Google Cloud Text-to-Speech tester",
		Long: "Synthesize speech with Google Cloud Text-to-Speech, browse the voice\n" +
			"catalogue, and play the result with whatever the host provides.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			slog.SetDefault(newLogger(logLevel))
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML settings file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newVoicesCmd(loadApp),
		newSynthCmd(loadApp),
		newInteractiveCmd(loadApp),
		newServeCmd(loadApp),
		newCacheCmd(loadApp),
	)
	return root
}

// appLoader defers application assembly until a command actually runs, so
// the persistent flags are parsed first. Tests substitute a loader that
// injects doubles.
type appLoader func() (*app.App, error)

func loadApp() (*app.App, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(*settings), nil
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// printAuthGuidance tells the user how to supply credentials after the
// service rejected (or never received) any.
func printAuthGuidance(w io.Writer) {
	fmt.Fprint(w, "\n✖  Could not authenticate with Google Cloud.\n"+
		"   Set GOOGLE_TTS_ACCESS_TOKEN, e.g.:\n"+
		"     export GOOGLE_TTS_ACCESS_TOKEN=$(gcloud auth print-access-token)\n"+
		"   or set GOOGLE_TTS_API_KEY to a Text-to-Speech API key.\n")
}
