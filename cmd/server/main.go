package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/config"
	"github.com/ffacttt-hash/frontend/internal/env"
	"github.com/ffacttt-hash/frontend/internal/handlers"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/search"
	"github.com/ffacttt-hash/frontend/internal/web"

	_ "github.com/joho/godotenv/autoload"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// .env is loaded after env's init ran.
	env.Current = cfg.Env

	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := catalog.New(cfg.APIURL, catalog.WithTimeout(cfg.APITimeout))

	sessions := search.NewRegistry(search.Config{
		Backend:  client,
		Debounce: cfg.SearchDebounce,
		Logger:   log,
	})
	go sessions.Run(ctx, sweepInterval, cfg.SearchSessionIdle)

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		return fmt.Errorf("failed to load static assets: %w", err)
	}

	app, err := handlers.New(&handlers.Config{
		Catalog:     client,
		Sessions:    sessions,
		Renderer:    renderer,
		Site:        cfg.Site(),
		Static:      static,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(log, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaECS,
		RecoverPanics: true,
		Skip: func(req *http.Request, respStatus int) bool {
			return respStatus < http.StatusBadRequest && (req.URL.Path == "/healthz" || req.URL.Path == "/metrics")
		},
	}))
	app.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	traced := otelhttp.NewHandler(r, "frontend",
		otelhttp.WithFilter(func(req *http.Request) bool {
			p := req.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           traced,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", server.Addr), slog.String("env", string(cfg.Env)), slog.String("api", cfg.APIURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	sessions.Close()
	return nil
}
