// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/analysis"
	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/detect/onnx"
	"github.com/starford/ansuz/internal/docstore"
	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/observe"
	"github.com/starford/ansuz/internal/ocr/tesseract"
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/vision"
	"github.com/starford/ansuz/internal/vision/gemini"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("search_path", cfg.Search.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Telemetry: OTel metrics with a Prometheus exporter behind /metrics.
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "ansuz",
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	// Ensure data directories exist.
	for _, dir := range []string{filepath.Dir(cfg.Store.Path), filepath.Dir(cfg.Search.Path), cfg.Uploads.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	// Open the persisted document.
	store, err := docstore.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	// Open the derived search index and seed it from the document.
	index, err := search.Open(cfg.Search.Path)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer index.Close()

	if doc, err := store.Load(); err != nil {
		logger.Warn("initial document load failed", slog.String("error", err.Error()))
	} else if err := index.Rebuild(doc); err != nil {
		logger.Warn("initial index rebuild failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Local object detector. The model loads in the background; analysis
	// degrades gracefully until it is ready.
	detector := onnx.New(onnx.Config{
		ModelPath:   cfg.Detector.ModelPath,
		LibraryPath: cfg.Detector.LibraryPath,
		Confidence:  cfg.Detector.Confidence,
	})
	defer detector.Close()

	if cfg.Detector.ModelPath != "" {
		go func() {
			if err := detector.Load(logger); err != nil {
				logger.Warn("object detection model load failed",
					slog.String("model_path", cfg.Detector.ModelPath),
					slog.String("error", err.Error()))
			}
		}()
	} else {
		logger.Info("no object detection model configured, local detection disabled")
	}

	// Cloud vision provider. The single credential gates every cloud
	// feature; without it the app runs fully offline.
	var visionProvider vision.Provider
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		var gopts []gemini.Option
		if cfg.Vision.BaseURL != "" {
			gopts = append(gopts, gemini.WithBaseURL(cfg.Vision.BaseURL))
		}
		p, err := gemini.New(apiKey, cfg.Vision.Model, gopts...)
		if err != nil {
			return fmt.Errorf("init vision provider: %w", err)
		}
		visionProvider = p
		logger.Info("cloud vision enabled", slog.String("model", cfg.Vision.Model))
	} else {
		logger.Info("GEMINI_API_KEY not set, cloud features disabled")
	}

	pipeline := analysis.NewPipeline(analysis.Config{
		Vision:    visionProvider,
		Detector:  detector,
		OCR:       tesseract.New(cfg.OCR.Languages),
		Metrics:   metrics,
		Logger:    logger,
		DemoDelay: time.Duration(cfg.Demo.DelayMS) * time.Millisecond,
	})

	// Build API service and router.
	svc := journal.NewService(store)
	handler := api.NewHandler(api.HandlerConfig{
		Service:   svc,
		Pipeline:  pipeline,
		Vision:    visionProvider,
		Index:     index,
		Broker:    broker,
		Metrics:   metrics,
		UploadDir: cfg.Uploads.Dir,
	})
	apiRouter := api.NewRouter(api.RouterConfig{
		Handler:     handler,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
		Events:      broker,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(observe.Middleware(metrics))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.Load(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	// Watch the document for external edits: notify SSE clients and rebuild
	// the derived index. Both are best effort.
	g.Go(func() error {
		return docstore.Watch(gCtx, store, logger, func() {
			broker.PublishReload()
			doc, err := store.Load()
			if err != nil {
				logger.Warn("document reload after external change failed",
					slog.String("error", err.Error()))
				metrics.RecordBestEffortFailure(gCtx, "search_rebuild")
				return
			}
			if err := index.Rebuild(doc); err != nil {
				logger.Warn("index rebuild after external change failed",
					slog.String("error", err.Error()))
				metrics.RecordBestEffortFailure(gCtx, "search_rebuild")
			}
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Unblock the watcher goroutine.
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
