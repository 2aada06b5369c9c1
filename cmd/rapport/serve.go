package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/api"
	"github.com/johncui/rapport/pkg/config"
	"github.com/johncui/rapport/pkg/journal"
	"github.com/johncui/rapport/pkg/logging"
	"github.com/johncui/rapport/pkg/metrics"
	"github.com/johncui/rapport/pkg/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Configuration is read from --config and RAPPORT_* environment variables:
  RAPPORT_HTTP_ADDR=:9000 RAPPORT_STORE_DRIVER=memory rapport serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		DBPath: cfg.Store.Path,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := journal.New(backend, journal.Options{
		Metrics: metrics.New(reg),
		Logger:  logger.Named("journal"),
	})
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.NewServer(engine, api.Options{
			CORSOrigins: cfg.HTTP.CORSOrigins,
			Gatherer:    reg,
			Logger:      logger.Named("http"),
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting rapport server",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("driver", cfg.Store.Driver),
			zap.String("db", cfg.Store.Path))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
