package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/clinicbook/internal/auth"
	"github.com/mmynk/clinicbook/internal/config"
	"github.com/mmynk/clinicbook/internal/connectivity"
	"github.com/mmynk/clinicbook/internal/metrics"
	"github.com/mmynk/clinicbook/internal/middleware"
	"github.com/mmynk/clinicbook/internal/service"
	"github.com/mmynk/clinicbook/internal/storage"
	"github.com/mmynk/clinicbook/internal/storage/backends"
	"github.com/mmynk/clinicbook/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	backend, err := backends.Open(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	logger.Info("Storage initialized", "backend", cfg.Backend, "path", cfg.DBPath())

	store := storage.NewStore(backend, storage.WithLogger(logger), storage.WithMetrics(m))

	monitor := connectivity.NewMonitor(true)
	defer monitor.Close()

	practice := service.NewPractice(store,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithMonitor(monitor),
		service.WithSampleData(cfg.SeedSample),
	)
	practice.Load(ctx)

	go practice.WatchConnectivity(ctx)
	if cfg.ProbeURL != "" {
		logger.Info("Probing connectivity", "url", cfg.ProbeURL, "interval", cfg.ProbeInterval)
		go connectivity.Probe(ctx, &http.Client{Timeout: 5 * time.Second}, cfg.ProbeURL, cfg.ProbeInterval, monitor, logger)
	}

	mux := http.NewServeMux()

	logInterceptor := middleware.LoggingInterceptor(logger, m)
	practiceOpts := []connect.HandlerOption{connect.WithInterceptors(logInterceptor)}
	if cfg.AuthEnabled() {
		authenticator, err := auth.NewPasscodeAuthenticator(cfg.PasscodeHash)
		if err != nil {
			return err
		}
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		practiceOpts = []connect.HandlerOption{
			connect.WithInterceptors(logInterceptor, middleware.RequireAuth(jwtManager)),
		}

		authPath, authHandler := service.NewAuthServiceHandler(
			service.NewAuthService(authenticator, jwtManager, logger),
			connect.WithInterceptors(logInterceptor),
		)
		mux.Handle(authPath, authHandler)
		logger.Info("Passcode authentication enabled", "token_ttl", cfg.TokenTTL)
	} else {
		logger.Warn("Passcode authentication disabled, PASSCODE_HASH is not set")
	}

	practicePath, practiceHandler := service.NewPracticeServiceHandler(
		service.NewPracticeService(practice, monitor, logger),
		practiceOpts...,
	)
	mux.Handle(practicePath, practiceHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return err
	}
	logger.Info("Serving static files", "path", staticDir)
	mux.HandleFunc("/", staticHandler(staticDir))

	// h2c serves HTTP/2 without TLS, which Connect's gRPC protocols need.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(loggingMiddleware(logger, corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", "http://localhost"+server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if pending := practice.Resync(shutdownCtx); len(pending) > 0 {
		logger.Warn("Unsaved collections at shutdown", "pending", pending)
	}
	return nil
}

// staticHandler serves the front-end, falling back to index.html for unknown paths.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/clinic.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
