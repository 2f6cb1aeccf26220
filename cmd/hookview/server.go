package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hookview/hookview/internal/blobstore"
	"github.com/hookview/hookview/internal/engine"
	"github.com/hookview/hookview/internal/httpserver"
	"github.com/hookview/hookview/internal/metric"
)

// runServer wires the blob store, query engine, and HTTP API together and
// blocks until a shutdown signal arrives.
func runServer(cfg appConfig) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	store, err := blobstore.NewFromConfig(blobstore.Config{
		Endpoint:  cfg.StoreEndpoint,
		Region:    cfg.StoreRegion,
		AccessKey: cfg.StoreAccessKey,
		SecretKey: cfg.StoreSecretKey,
		Bucket:    cfg.StoreBucket,
		UseSSL:    cfg.StoreUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}
	configured := true
	if _, ok := store.(blobstore.Unconfigured); ok {
		configured = false
		log.Printf("server: blob store credentials missing; data endpoints will report a configuration error")
	}

	metrics := metric.New()

	eng := engine.New(store)
	eng.SetMaxConcurrentReads(cfg.MaxConcurrentReads)
	eng.SetMetrics(metrics)

	api := httpserver.NewServer(cfg.APIAddr, eng)
	api.SetMetrics(metrics)
	if err := api.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	printStartupBanner(cfg, configured)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := api.Stop(); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
	}()

	// Shutdown deadline starts now — not at boot.
	deadline := time.NewTimer(10 * time.Second)
	defer deadline.Stop()

	select {
	case <-done:
	case <-sigCh:
		fmt.Println("\nForce shutdown.")
		os.Exit(1)
	case <-deadline.C:
		fmt.Println("Shutdown timed out, forcing exit.")
		os.Exit(1)
	}

	signal.Stop(sigCh)
	return nil
}

func printStartupBanner(cfg appConfig, storeConfigured bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	cross := red.Render("●")

	logo := cyan.Bold(true).Render(`
    ┬ ┬┌─┐┌─┐┬┌─┬  ┬┬┌─┐┬ ┬
    ├─┤│ ││ │├┴┐└┐┌┘│├┤ │││
    ┴ ┴└─┘└─┘┴ ┴ └┘ ┴└─┘└┴┘`)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+dim.Render("v"+version))
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	if storeConfigured {
		lines = append(lines, fmt.Sprintf("    %s  Object Store   %s", check, dim.Render(cfg.StoreEndpoint)))
		lines = append(lines, fmt.Sprintf("    %s  Bucket         %s", check, dim.Render(cfg.StoreBucket)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Object Store   %s", cross, dim.Render("not configured")))
	}

	lines = append(lines, "")
	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(cfg.ConfigPath)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dim.Render("●"), dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}
