package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timeline-compositor/internal/compositor"
	"timeline-compositor/internal/graph"
	"timeline-compositor/internal/platform/config"
	"timeline-compositor/internal/platform/logger"
	"timeline-compositor/internal/platform/metrics"
	"timeline-compositor/internal/timeline"

	"github.com/go-chi/chi/v5"
)

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	logSource := config.GetEnvBool("LOG_SOURCE", false)
	timelineFile := config.GetEnv("TIMELINE_FILE", "")
	floor := config.GetEnvUint("DEFAULT_PRIORITY_FLOOR", 0)
	scan := timeline.ParseScanMode(config.GetEnv("RESOLVER_SCAN", "start"))
	shutdownTimeout := time.Duration(config.GetEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second

	log := logger.New(logLevel, logFormat, logSource)

	met := metrics.New()
	repo := compositor.NewInMemoryRepository()
	svc := compositor.NewService(repo, compositor.Settings{
		Graph:         graph.NewMemory(log.With("component", "graph")),
		Logger:        log,
		Recorder:      met,
		PriorityFloor: floor,
		ScanMode:      scan,
	})

	if timelineFile != "" {
		m, err := compositor.LoadManifestFile(timelineFile)
		if err != nil {
			log.Error("manifest load failed", "path", timelineFile, "error", err)
			os.Exit(1)
		}
		if err := svc.ApplyManifest(m); err != nil {
			log.Error("manifest apply failed", "path", timelineFile, "error", err)
			os.Exit(1)
		}
		log.Info("manifest applied", "path", timelineFile, "compositions", svc.Count())
	}

	h := compositor.NewHandler(svc, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetCompositions(repo.Count()) }).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"log_level", logLevel,
		"resolver_scan", scan.String(),
		"priority_floor", floor,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
