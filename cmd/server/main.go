package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	root "escalator"
	"escalator/internal/config"
	"escalator/internal/game"
	"escalator/internal/game/escalator"
	"escalator/internal/mcptools"
	"escalator/internal/server"
	"escalator/internal/session"
	"escalator/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	registry := game.NewRegistry()
	registry.Register(escalator.Game{})

	mgr := session.NewManager(registry, store, cfg.Scoring)
	if err := mgr.Restore(); err != nil {
		log.Printf("warning: restore sessions: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go mgr.CleanupLoop(ctx, cfg.CleanupInterval, cfg.SessionMaxAge)

	webFS, err := frontEnd(cfg.WebDir)
	if err != nil {
		log.Fatalf("web files: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", server.New(registry, mgr, webFS))
	mux.Handle("/mcp", mcptools.New(mgr).Handler())

	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// frontEnd serves dir when set and the embedded files otherwise.
func frontEnd(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(root.WebFS, "web")
}
