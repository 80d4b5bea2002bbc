package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/NamanBalaji/fget/internal/config"
	"github.com/NamanBalaji/fget/internal/engine"
	"github.com/NamanBalaji/fget/internal/fetch"
	"github.com/NamanBalaji/fget/internal/history"
	"github.com/NamanBalaji/fget/internal/logger"
	"github.com/NamanBalaji/fget/internal/tui"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
		os.Exit(1)
	}

	appDir := filepath.Join(homeDir, ".fget")

	if err := os.MkdirAll(appDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating app directory: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogging(cfg.Debug, filepath.Join(appDir, "fget.log")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logging: %v\n", err)
	}
	defer logger.Close()

	client := fetch.NewClient(&fetch.ClientConfig{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       16,
		IdleConnTimeout:       90 * time.Second,
		MaxRedirects:          cfg.HTTP.MaxRedirects,
		DialTimeout:           cfg.HTTP.DialTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.HTTP.HeaderTimeout,
		UserAgent:             cfg.HTTP.UserAgent,
		DefaultHeaders:        cfg.HTTP.Headers,
	})
	defer client.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received interrupt signal, shutting down...")
		cancel()
	}()

	if cfg.Plain {
		os.Exit(runPlain(ctx, client, cfg))
	}

	repo, err := history.NewRepository(filepath.Join(appDir, "fget.db"))
	if err != nil {
		logger.Errorf("Error opening history: %v", err)
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	eng := engine.New(client, repo, engine.Config{
		MaxConcurrent: cfg.MaxConcurrentFetches,
		OutputDir:     cfg.Output.Dir,
		Headers:       cfg.HTTP.Headers,
	})

	if err := eng.Start(ctx); err != nil {
		logger.Errorf("Error starting engine: %v", err)
		fmt.Fprintf(os.Stderr, "Error starting engine: %v\n", err)
		os.Exit(1)
	}

	for _, url := range cfg.Urls {
		if _, err := eng.Add(url, 1); err != nil {
			logger.Warnf("Skipping %s: %v", url, err)
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", url, err)
		}
	}

	if err := tui.Run(eng); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
	}

	logger.Infof("TUI has exited. Shutting down engine...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := eng.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during engine shutdown: %v", err)
	}

	logger.Infof("Shutdown complete.")
}

// runPlain fetches each URL sequentially without a TUI. A single URL is
// written to stdout; multiple URLs land in the output directory.
func runPlain(ctx context.Context, client *fetch.Client, cfg *config.Config) int {
	if len(cfg.Urls) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: fget -plain [flags] URL...")
		return 2
	}

	toStdout := len(cfg.Urls) == 1

	for _, url := range cfg.Urls {
		result, err := client.Fetch(ctx, url, &fetch.Options{
			Headers: cfg.HTTP.Headers,
			ProgressFn: func(received, expected, speed int64) {
				if expected >= 0 {
					fmt.Fprintf(os.Stderr, "\r%s: %d / %d bytes", url, received, expected)
				} else {
					fmt.Fprintf(os.Stderr, "\r%s: %d bytes", url, received)
				}
			},
		})

		fmt.Fprintln(os.Stderr)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", url, err)
			return 1
		}

		if err := emitResult(result, cfg, toStdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", url, err)
			return 1
		}
	}

	return 0
}

func emitResult(result *fetch.Result, cfg *config.Config, toStdout bool) error {
	if toStdout {
		if cfg.Text {
			text, err := result.Text(cfg.Output.Charset)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(os.Stdout, text)

			return err
		}

		_, err := os.Stdout.Write(result.Bytes())

		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(cfg.Output.Dir, result.Info.Filename)

	return os.WriteFile(path, result.Bytes(), 0o644)
}
