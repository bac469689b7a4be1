package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/draftlab/mlbb-draft-backend/internal/engine"
	"github.com/draftlab/mlbb-draft-backend/internal/httpapi"
	"github.com/draftlab/mlbb-draft-backend/internal/pool"
	"github.com/draftlab/mlbb-draft-backend/internal/ws"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := pool.SourceFromEnv()
	if err != nil {
		log.Fatal("pool source setup failed", zap.Error(err))
	}
	store, err := pool.NewStore(ctx, source, log)
	if err != nil {
		// Integrity failures are fatal here, never patched per request.
		log.Fatal("pool load failed", zap.Error(err))
	}
	if envBool("POOL_WATCH") {
		paths := []string{os.Getenv("POOL_PATH"), os.Getenv("POOL_OVERRIDES_PATH")}
		if err := store.Watch(paths...); err != nil {
			log.Warn("pool watch disabled", zap.Error(err))
		}
	}

	eng := engine.New(log)
	api := httpapi.NewServer(eng, store, log)
	live := ws.NewHandler(eng, store, log)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpapi.SetupRoutes(api, live),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		snap := store.Snapshot()
		log.Info("listening",
			zap.String("addr", addr),
			zap.String("pool_version", snap.Version),
			zap.Int("heroes", len(snap.Profiles)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
	store.Inbox() <- pool.Shutdown{}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
