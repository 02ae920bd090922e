package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/graphpad/internal/api"
	"github.com/inamate/graphpad/internal/config"
	"github.com/inamate/graphpad/internal/engine"
	mw "github.com/inamate/graphpad/internal/middleware"
	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/session"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// One sample cache serves every engine and the sampling endpoint.
	cache := sample.NewCache(cfg.SampleCacheSize)
	newEngine := func() *engine.Engine {
		return engine.NewEngine(engine.WithCache(cache), engine.WithMaxDepth(cfg.MaxSamplingDepth))
	}

	hub := session.NewHub(newEngine)
	store := api.NewStore(cfg.MaxDiagrams, newEngine)
	apiHandler := api.NewHandler(store, cache, cfg.MaxSamplingDepth)

	origins := mw.SplitOrigins(cfg.AllowedOrigins)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		hits, misses := cache.Stats()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","sessions":%d,"diagrams":%d,"cacheHits":%d,"cacheMisses":%d}`,
			hub.Len(), store.Len(), hits, misses)
	}).Methods("GET")

	apiHandler.Routes(r.PathPrefix("/api").Subrouter())

	// WebSocket endpoint
	r.HandleFunc("/ws", session.Handler(hub, mw.OriginPatterns(origins)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(origins)(r), // outside the router so preflights skip route matching
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
