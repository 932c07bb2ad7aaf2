package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "road-survey/internal/api/http"
	"road-survey/internal/container"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the survey HTTP API",
	Long: `Starts the HTTP API:

  POST /v1/surveys               start a survey over a server-side folder
  GET  /v1/surveys               list surveys
  GET  /v1/surveys/:id           status and JSON report
  POST /v1/surveys/:id/cancel    cancel a running survey
  GET  /v1/surveys/:id/report    HTML report
  GET  /metrics                  Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: http.addr from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	c, err := container.FromConfig(cfg, logger, newNotifier(cfg, logger), nil)
	if err != nil {
		return err
	}
	defer c.Close()

	router := httpapi.NewRouter(c.SurveyService, httpapi.JobDefaults{
		OutputDir:    cfg.Survey.OutputDir,
		Confidence:   cfg.Survey.Confidence,
		Format:       cfg.OutputFormat(),
		Thumbnails:   cfg.Survey.Thumbnails,
		IncludeClean: cfg.Survey.IncludeClean,
	}, logger.Named("http"))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("http shutdown", "error", err)
	}
	return c.SurveyService.Shutdown(shutdownCtx)
}
