package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/classifystack/drift-engine/internal/api"
	"github.com/classifystack/drift-engine/internal/metrics"
	"github.com/classifystack/drift-engine/internal/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the drift API server and the periodic analysis scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	rt, err := newRuntime(true)
	if err != nil {
		return err
	}
	defer rt.close()
	logger := rt.logger

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	server := api.NewServer(logger, rt.cfg.Server.Address, rt.service)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if rt.cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         rt.cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", rt.cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	if interval := rt.cfg.Monitor.ScheduleInterval; interval > 0 {
		go runScheduler(ctx, logger, rt.service, interval, rt.cfg.Monitor.RunTimeout)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("drift-engine stopped")
	return nil
}

// runScheduler triggers an analysis run every interval until ctx is done.
func runScheduler(ctx context.Context, logger *slog.Logger, service *services.DriftService, interval, runTimeout time.Duration) {
	logger.Info("scheduler started", slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			runCtx := ctx
			cancel := context.CancelFunc(func() {})
			if runTimeout > 0 {
				runCtx, cancel = context.WithTimeout(ctx, runTimeout)
			}
			report, _ := service.RunAnalysis(runCtx)
			cancel()
			logger.Info("scheduled analysis finished",
				slog.String("status", string(report.Status)),
				slog.String("severity", string(report.Severity)))
		}
	}
}
