package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/pkg/tts"
)

func newVoicesCmd(load appLoader) *cobra.Command {
	var query app.VoicesQuery

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runVoices(cmd, a, query)
		},
	}

	cmd.Flags().StringVarP(&query.Language, "lang", "l", "", "filter by language code (e.g. en-US)")
	cmd.Flags().StringVarP(&query.Name, "name", "n", "", "filter by voice name substring")
	cmd.Flags().StringVarP(&query.Gender, "gender", "g", "", "filter by gender (MALE, FEMALE, NEUTRAL)")
	cmd.Flags().BoolVar(&query.Refresh, "refresh", false, "ignore the local cache and fetch from the service")
	return cmd
}

func runVoices(cmd *cobra.Command, a *app.App, query app.VoicesQuery) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	// Announce the remote round-trip before it starts. A refresh always
	// fetches; otherwise only a missing or stale snapshot does.
	if _, fresh := a.Cache().Get(a.Settings().CacheTTL()); query.Refresh || !fresh {
		fmt.Fprintln(out, "Fetching voices from Google Cloud …")
	}

	voices, _, err := a.Voices(cmd.Context(), query)
	if err != nil {
		if errors.Is(err, tts.ErrNotAuthenticated) {
			printAuthGuidance(errOut)
		} else {
			fmt.Fprintf(errOut, "✖  Failed to list voices: %v\n", err)
		}
		return errReported
	}

	printVoices(out, voices)
	return nil
}

// printVoices renders the catalogue as a fixed-width table.
func printVoices(w io.Writer, voices []tts.Voice) {
	if len(voices) == 0 {
		fmt.Fprintln(w, "No voices matched your filters.")
		return
	}
	fmt.Fprintf(w, "\n%-40s %-10s %-10s %6s\n", "Voice Name", "Lang", "Gender", "Hz")
	fmt.Fprintln(w, strings.Repeat("─", 70))
	for _, v := range voices {
		langs := strings.Join(v.LanguageCodes, ", ")
		fmt.Fprintf(w, "%-40s %-10s %-10s %6d\n", v.Name, langs, v.SSMLGender, v.NaturalSampleRateHertz)
	}
	fmt.Fprintf(w, "\nTotal: %d voice(s)\n\n", len(voices))
}
