package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/terminal-bench/gridfeed/internal/backfill"
	"github.com/terminal-bench/gridfeed/internal/config"
	"github.com/terminal-bench/gridfeed/internal/fetch"
	"github.com/terminal-bench/gridfeed/internal/poller"
	"github.com/terminal-bench/gridfeed/internal/reports"
	"github.com/terminal-bench/gridfeed/internal/stream"
	"github.com/terminal-bench/gridfeed/pkg/messaging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	client, err := messaging.NewClient(messaging.Config{
		URL:            cfg.NATSURL,
		Name:           "ieso-producer",
		ReconnectWait:  time.Second,
		MaxReconnects:  -1,
		ConnectTimeout: 5 * time.Second,
		FlushTimeout:   cfg.FlushTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to connect to broker", "url", cfg.NATSURL, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.EnsureStream(cfg.StreamName, []string{"ieso.>"}); err != nil {
		logger.Error("failed to ensure stream", "stream", cfg.StreamName, "error", err)
		os.Exit(1)
	}

	fetcher := fetch.NewClient(cfg.BaseURL, fetch.Options{
		Timeout:  cfg.HTTPTimeout,
		Attempts: cfg.FetchAttempts,
		Backoff:  cfg.FetchBackoff,
		Logger:   logger,
	})

	families := reports.Registry(now)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reconcile archive history before the live loop starts; gaps from
	// downtime are refilled here. A failed backfill is logged and the
	// live cycle proceeds anyway.
	reconciler := backfill.NewReconciler(fetcher, client, backfill.Config{
		Families:   families,
		WindowDays: cfg.BackfillDays,
		Permits:    cfg.Concurrency,
		Now:        now,
		Logger:     logger,
	})
	if err := reconciler.Run(ctx); err != nil {
		logger.Warn("backfill failed, continuing with live cycle", "error", err)
	}

	p := poller.New(fetcher, client, poller.Config{
		Families: families,
		Interval: cfg.PollInterval,
		Now:      now,
		Logger:   logger,
	})
	p.Start(ctx)
	defer p.Stop()

	hub := stream.NewHub(logger)
	if err := hub.Attach(client, []string{"ieso.>"}); err != nil {
		logger.Error("failed to attach stream hub", "error", err)
		os.Exit(1)
	}
	hub.Start(ctx)
	defer hub.Stop()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if !client.IsConnected() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})

	r.GET("/api/v1/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"broker_connected": client.IsConnected(),
			"stream_clients":   hub.SubscriberCount(),
			"poller":           p.Stats(),
		})
	})

	r.GET("/ws/stream", func(c *gin.Context) {
		var topics []string
		if raw := c.Query("topics"); raw != "" {
			topics = strings.Split(raw, ",")
		}
		hub.HandleWebSocket(c.Writer, c.Request, topics)
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		logger.Info("status api listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
