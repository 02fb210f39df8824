package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/pkg/tts"
)

func newSynthCmd(load appLoader) *cobra.Command {
	var (
		file     string
		output   string
		noPlay   bool
		language string
		voice    string
		encoding string
		rate     float64
		pitch    float64
		volume   float64
	)

	cmd := &cobra.Command{
		Use:   "synth [text]",
		Short: "Synthesize text to audio",
		Long: "Synthesize the given text (or SSML) to an audio file and play it.\n" +
			"Text comes from the positional argument, --file, or piped stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			positional := ""
			if len(args) == 1 {
				positional = args[0]
			}
			text, ok := resolveText(cmd.ErrOrStderr(), positional, file, os.Stdin, stdinPiped())
			if !ok {
				return errReported
			}

			// Only flags the user actually set become overrides; everything
			// else keeps its settings-file (or default) value.
			var ov config.Overrides
			flags := cmd.Flags()
			if flags.Changed("lang") {
				ov.LanguageCode = &language
			}
			if flags.Changed("voice") {
				ov.VoiceName = &voice
			}
			if flags.Changed("encoding") {
				ov.Encoding = &encoding
			}
			if flags.Changed("rate") {
				ov.SpeakingRate = &rate
			}
			if flags.Changed("pitch") {
				ov.Pitch = &pitch
			}
			if flags.Changed("volume") {
				ov.VolumeGainDB = &volume
			}

			job := app.SynthesisJob{Text: text, Overrides: ov, OutputPath: output}
			return runSynth(cmd, a, job, noPlay)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read input from a text file instead")
	cmd.Flags().StringVarP(&language, "lang", "l", "", "language code (e.g. en-US)")
	cmd.Flags().StringVarP(&voice, "voice", "v", "", "exact voice name")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "audio encoding (LINEAR16, MP3, OGG_OPUS, MULAW, ALAW)")
	cmd.Flags().Float64VarP(&rate, "rate", "r", 0, "speaking rate (0.25 to 4.0)")
	cmd.Flags().Float64VarP(&pitch, "pitch", "p", 0, "pitch in semitones (-20 to 20)")
	cmd.Flags().Float64Var(&volume, "volume", 0, "volume gain in dB (-96 to 16)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&noPlay, "no-play", false, "skip automatic playback")
	return cmd
}

func runSynth(cmd *cobra.Command, a *app.App, job app.SynthesisJob, noPlay bool) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	eff := a.Settings()
	eff.Apply(job.Overrides)
	fmt.Fprintf(out, "Synthesizing (%s, rate=%g, pitch=%g) …\n", eff.Encoding, eff.SpeakingRate, eff.Pitch)

	art, err := a.Synthesize(cmd.Context(), job)
	if err != nil {
		reportSynthesisError(errOut, err)
		return errReported
	}
	fmt.Fprintf(out, "✔  Saved to %s  (%.1f KB)\n", art.Path, float64(art.Size)/1024)

	if !noPlay {
		a.Play(cmd.Context(), art.Path)
	}
	return nil
}

// reportSynthesisError prints the user-facing message for a failed
// synthesis. Input-shaped problems print bare, an authentication failure
// gets setup guidance, and everything else reads as a service failure.
func reportSynthesisError(w io.Writer, err error) {
	switch {
	case errors.Is(err, tts.ErrNotAuthenticated):
		printAuthGuidance(w)
	case errors.Is(err, tts.ErrEmptyInput), errors.Is(err, tts.ErrUnknownEncoding):
		fmt.Fprintf(w, "✖  %v\n", err)
	default:
		fmt.Fprintf(w, "✖  Synthesis failed: %v\n", err)
	}
}

// resolveText picks the synthesis input: an explicit file wins, then the
// positional argument, then piped stdin. A terminal stdin is never read.
// On failure the reason is printed to errOut and ok is false.
func resolveText(errOut io.Writer, positional, file string, stdin io.Reader, piped bool) (text string, ok bool) {
	if file != "" {
		data, err := os.ReadFile(file)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(errOut, "✖  File not found: %s\n", file)
			return "", false
		}
		if err != nil {
			fmt.Fprintf(errOut, "✖  Could not read %s: %v\n", file, err)
			return "", false
		}
		return string(data), true
	}
	if positional != "" {
		return positional, true
	}
	if piped {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(errOut, "✖  Could not read stdin: %v\n", err)
			return "", false
		}
		return string(data), true
	}
	fmt.Fprintln(errOut, "✖  No text provided. Pass text as an argument, use --file, or pipe via stdin.")
	return "", false
}

// stdinPiped reports whether stdin carries piped data rather than an
// interactive terminal.
func stdinPiped() bool {
	fd := os.Stdin.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}
