package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattn/html2md/internal/logger"
	"github.com/mattn/html2md/internal/server"
	"github.com/mattn/html2md/internal/source"
)

func newServeCommand(f *flags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Starts an HTTP server with these endpoints:

  POST /convert      HTML request body, Markdown response
  POST /convert/url  {"url": "..."} body, fetches the page and converts it
                     (private and loopback hosts are refused unless
                     server.allow_private is set)
  GET  /health       liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, f *flags, addr string) error {
	logger.SetVerbose(f.verbose)

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	opt, err := cfg.Option()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	fetcher := source.NewFetcher(cfg.Fetch.UserAgent, timeout)
	fetcher.MaxBytes = cfg.Server.MaxBodyBytes
	if !cfg.Server.AllowPrivate {
		fetcher.PublicOnly()
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.New(opt, fetcher, log, cfg.Server.MaxBodyBytes),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	log.Info("starting html2md server", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-cmd.Context().Done():
		log.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}
