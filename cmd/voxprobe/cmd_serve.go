package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/internal/observe"
	"github.com/MrWong99/voxprobe/internal/webui"
)

func newServeCmd(load appLoader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), load, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address for the web UI")
	return cmd
}

func runServe(ctx context.Context, load appLoader, addr string) error {
	// Telemetry first: the metric instruments bind to the global meter
	// provider, so the Prometheus exporter must be installed before the
	// application is assembled.
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "voxprobe",
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shCtx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	a, err := load()
	if err != nil {
		return err
	}

	slog.Info("voxprobe starting",
		"config", configPath,
		"listen_addr", addr,
		"log_level", logLevel,
	)
	printServeSummary(a.Settings(), addr, a.OutputDir())
	slog.Info("web ui ready, press Ctrl+C to shut down")

	return webui.New(a, webui.WithAddr(addr)).Run(ctx)
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printServeSummary(s config.Settings, addr, outputDir string) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         voxprobe - web UI             ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printSetting("Listen addr", addr)
	printSetting("Language", s.LanguageCode)
	voice := s.VoiceName
	if voice == "" {
		voice = "(provider default)"
	}
	printSetting("Voice", voice)
	printSetting("Encoding", s.Encoding)
	printSetting("Outputs dir", outputDir)
	printSetting("Cache TTL", s.CacheTTL().String())
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printSetting(label, value string) {
	if len(value) > 20 {
		value = value[:19] + "…"
	}
	fmt.Printf("║  %-14s: %-20s ║\n", label, value)
}
