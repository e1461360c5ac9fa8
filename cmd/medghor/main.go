// Command medghor runs the inventory announcement and management server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medghor/internal/adapters/rest"
	"medghor/internal/blob"
	"medghor/internal/contact"
	"medghor/internal/core"
	"medghor/internal/gate"
	"medghor/internal/report"
)

const (
	envListenAddr   = "MEDGHOR_LISTEN_ADDR"
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

// zapLogger adapts a zap sugared logger to the core.Logger surface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, keyvals ...any) { l.sugar.Debugw(msg, keyvals...) }
func (l zapLogger) Info(msg string, keyvals ...any)  { l.sugar.Infow(msg, keyvals...) }
func (l zapLogger) Warn(msg string, keyvals ...any)  { l.sugar.Warnw(msg, keyvals...) }
func (l zapLogger) Error(msg string, keyvals ...any) { l.sugar.Errorw(msg, keyvals...) }

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger := zapLogger{sugar: zl.Sugar()}

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger core.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := core.OpenPersistentStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	metrics := core.NewPrometheusMetricsRecorder()
	service := core.NewService(store, core.WithLogger(logger), core.WithMetrics(metrics))

	blobs, err := blob.Open(ctx)
	if err != nil {
		return err
	}

	worker := report.NewWorker(service, blobs, report.WithLogger(logger))
	worker.Start()

	officeGate := gate.OpenFromEnv()
	relay := contact.OpenFromEnv(contact.WithLogger(logger))

	handler := rest.NewHandler(service)
	handler.Gate = officeGate
	handler.Reports = worker
	handler.Blobs = blobs
	handler.Contact = relay
	handler.Logger = logger

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.Handle("/", handler)

	addr := os.Getenv(envListenAddr)
	if addr == "" {
		addr = defaultAddr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return worker.Stop(shutdownCtx)
	})
	return group.Wait()
}

func closeStore(store any, logger core.Logger) {
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}
}
