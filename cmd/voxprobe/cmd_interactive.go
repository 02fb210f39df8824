package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/pkg/tts"
)

func newInteractiveCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Launch the interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runInteractive(cmd, a)
		},
	}
}

func runInteractive(cmd *cobra.Command, a *app.App) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	fmt.Fprintln(out, "┌──────────────────────────────────────────────┐")
	fmt.Fprintln(out, "│  voxprobe - Interactive Mode                 │")
	fmt.Fprintln(out, "│  Type text and press Enter to synthesize.    │")
	fmt.Fprintln(out, "│  Commands: /voices  /config  /quit           │")
	fmt.Fprintln(out, "└──────────────────────────────────────────────┘")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\n🎤  ",
		HistoryFile:     filepath.Join(os.TempDir(), ".voxprobe_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("start interactive prompt: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "\nBye!")
				return nil
			}
			fmt.Fprintf(errOut, "✖  %v\n", err)
			continue
		}

		quit, err := handleLine(cmd.Context(), a, strings.TrimSpace(line), out, errOut)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handleLine processes one prompt input: a command when it starts with a
// slash, otherwise text to synthesize and play. It reports whether the
// prompt loop should end; a non-nil error additionally fails the process.
func handleLine(ctx context.Context, a *app.App, input string, out, errOut io.Writer) (quit bool, err error) {
	if input == "" {
		return false, nil
	}

	switch strings.ToLower(input) {
	case "/quit", "/exit", "/q":
		fmt.Fprintln(out, "Bye!")
		return true, nil

	case "/voices":
		voices, _, err := a.Voices(ctx, app.VoicesQuery{
			Language: a.Settings().LanguageCode,
			Refresh:  true,
		})
		if err != nil {
			if errors.Is(err, tts.ErrNotAuthenticated) {
				printAuthGuidance(errOut)
				return true, errReported
			}
			fmt.Fprintf(errOut, "✖  %v\n", err)
			return false, nil
		}
		printVoices(out, voices)
		return false, nil

	case "/config":
		printConfig(out, a.Settings())
		return false, nil
	}

	art, synthErr := a.Synthesize(ctx, app.SynthesisJob{Text: input})
	if synthErr != nil {
		if errors.Is(synthErr, tts.ErrNotAuthenticated) {
			printAuthGuidance(errOut)
			return true, errReported
		}
		fmt.Fprintf(errOut, "✖  %v\n", synthErr)
		return false, nil
	}
	fmt.Fprintf(out, "✔  %s  (%.1f KB)\n", art.Path, float64(art.Size)/1024)
	a.Play(ctx, art.Path)
	return false, nil
}

// printConfig dumps the effective settings, one line per field in the
// order of the settings file.
func printConfig(w io.Writer, s config.Settings) {
	fmt.Fprintf(w, "  language_code: %s\n", s.LanguageCode)
	fmt.Fprintf(w, "  voice_name: %s\n", s.VoiceName)
	fmt.Fprintf(w, "  encoding: %s\n", s.Encoding)
	fmt.Fprintf(w, "  speaking_rate: %g\n", s.SpeakingRate)
	fmt.Fprintf(w, "  pitch: %g\n", s.Pitch)
	fmt.Fprintf(w, "  volume_gain_db: %g\n", s.VolumeGainDB)
	fmt.Fprintf(w, "  cache_ttl_seconds: %d\n", s.CacheTTLSeconds)
}
