package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrWong99/voxprobe/internal/cache"
)

func newCacheCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the voice cache",
	}
	cmd.AddCommand(newCacheInfoCmd(load), newCacheClearCmd(load))
	return cmd
}

func newCacheInfoCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cached voice snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			printCacheInfo(cmd.OutOrStdout(), a.Cache().Stat(), a.Settings().CacheTTL())
			return nil
		},
	}
}

func newCacheClearCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cached voice snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			if err := a.Cache().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Voice cache cleared.")
			return nil
		},
	}
}

func printCacheInfo(w io.Writer, info cache.Info, ttl time.Duration) {
	fmt.Fprintf(w, "Path:    %s\n", info.Path)
	switch {
	case !info.Exists:
		fmt.Fprintln(w, "Status:  no snapshot")
	case info.Corrupt:
		fmt.Fprintln(w, "Status:  corrupt (treated as absent)")
	default:
		status := "fresh"
		if info.Age > ttl {
			status = "stale"
		}
		fmt.Fprintf(w, "Status:  %s\n", status)
		fmt.Fprintf(w, "Age:     %s\n", info.Age.Round(time.Second))
		fmt.Fprintf(w, "Voices:  %d\n", info.Voices)
	}
}
