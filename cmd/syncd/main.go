package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Redser06/homebudgeter/internal/config"
	"github.com/Redser06/homebudgeter/internal/connectivity"
	"github.com/Redser06/homebudgeter/internal/remote"
	"github.com/Redser06/homebudgeter/internal/service"
	"github.com/Redser06/homebudgeter/internal/store"
	"github.com/Redser06/homebudgeter/pkg/infra"
)

func main() {
	cfg := config.Load()
	logger := infra.SetupLogger(cfg)
	slog.SetDefault(logger)
	defer infra.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.LocalDBPath, logger)
	if err != nil {
		logger.Error("FATAL: Failed to open local store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	rc, err := remote.NewClient(ctx, cfg.RemoteURL, cfg.RemoteTimeout, logger)
	if err != nil {
		logger.Error("FATAL: Failed to connect to remote store", "error", err)
		os.Exit(1)
	}
	defer rc.Close()

	monitor := connectivity.NewMonitor(rc.Ping, cfg.ProbeInterval, logger)

	engine := service.New(st, rc, monitor, nil, logger, service.Options{
		SyncInterval: cfg.SyncInterval,
		SinceSlack:   cfg.SinceSlack,
	})
	monitor.OnChange(func(online bool) {
		engine.SetOnline(online)
	})

	go runMetricsServer(ctx, cfg.MetricsAddr, logger)
	go monitor.Run(ctx)

	engine.Start()
	logger.Info("🚀 Sync daemon started", "pid", os.Getpid())

	// Kick off an initial cycle so the device converges right after boot
	// instead of waiting for the first timer tick.
	if err := engine.IncrementalSync(ctx); err != nil {
		logger.Warn("Initial sync did not complete", "error", err)
	}

	<-ctx.Done()
	logger.Info("👋 Shutting down...")
	engine.Stop()
	logger.Info("✅ Shutdown complete")
}

func runMetricsServer(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("Metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server stopped", "error", err)
	}
}
