package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/studybuddy/internal/adapter/camera"
	"github.com/heartmarshall/studybuddy/internal/adapter/localfs"
	"github.com/heartmarshall/studybuddy/internal/adapter/redisstore"
	"github.com/heartmarshall/studybuddy/internal/adapter/studybuddy"
	"github.com/heartmarshall/studybuddy/internal/config"
	"github.com/heartmarshall/studybuddy/internal/service/capture"
	"github.com/heartmarshall/studybuddy/internal/service/dashboard"
	"github.com/heartmarshall/studybuddy/internal/service/session"
	"github.com/heartmarshall/studybuddy/internal/transport/middleware"
)

// IO is the terminal the shell talks to.
type IO struct {
	In  io.Reader
	Out io.Writer
}

// Run is the application entry point. It loads configuration, wires the
// client stack and runs the shell until the user quits or ctx is done.
func Run(ctx context.Context, console IO) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logOut, closeLog, err := openLogOutput(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	logger := NewLogger(cfg.Log, logOut)
	logger.Info("starting studybuddy",
		slog.String("version", BuildVersion()),
		slog.String("api", cfg.API.BaseURL),
		slog.String("session_backend", cfg.Session.Backend),
	)

	return run(ctx, cfg, logger, console)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, console IO) error {
	persist, closePersist, err := newPersister(ctx, cfg.Session, logger)
	if err != nil {
		return err
	}
	defer closePersist()

	store := session.NewStore(logger, persist)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	stopMetrics := serveMetrics(cfg.Metrics, reg, logger)
	defer stopMetrics()

	transport := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.UserAgent(userAgent(cfg.API.UserAgent)),
		middleware.Auth(store.Token),
		middleware.Logger(logger),
		middleware.Metrics(middleware.NewClientMetrics(reg)),
	)(http.DefaultTransport)

	client := studybuddy.NewClient(cfg.API.BaseURL, transport, cfg.API.Timeout, logger)
	device := camera.NewDevice(cfg.Camera.SourcePath, logger)

	shell := NewShell(console.In, console.Out, logger)
	dash := dashboard.New(logger, dashboard.Deps{
		API:     client,
		Session: store,
		Camera: capture.OpenFunc(func(ctx context.Context) (capture.Stream, error) {
			stream, err := device.Open(ctx)
			if err != nil {
				return nil, err
			}
			return stream, nil
		}),
		Downloads:    localfs.NewDownloads(cfg.Downloads.Dir, logger),
		Notifier:     shell,
		Confirmer:    shell,
		IdentityHint: cfg.Scan.DefaultIdentityHint,
	})

	err = shell.Run(ctx, dash)
	dash.Capture.Stop(context.WithoutCancel(ctx))
	logger.Info("studybuddy stopped")
	return err
}

type persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// newPersister selects where the session blob is kept.
func newPersister(ctx context.Context, cfg config.SessionConfig, logger *slog.Logger) (persister, func(), error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.New(client, cfg.RedisPrefix, cfg.StorageName, cfg.RedisTTL, logger)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		return store, func() { _ = client.Close() }, nil
	default:
		return localfs.NewSessionFile(cfg.Dir, cfg.StorageName, logger), func() {}, nil
	}
}

// serveMetrics exposes reg on /metrics when an address is configured. The
// returned func shuts the listener down.
func serveMetrics(cfg config.MetricsConfig, reg *prometheus.Registry, logger *slog.Logger) func() {
	if cfg.Addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", slog.String("error", err.Error()))
		}
	}
}
