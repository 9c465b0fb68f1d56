package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"adalbertofjr/desafio-login-lockout/ajun"
	"adalbertofjr/desafio-login-lockout/ajun/middleware"
	"adalbertofjr/desafio-login-lockout/ajun/middleware/lockout"
	"adalbertofjr/desafio-login-lockout/cmd/configs"
	"adalbertofjr/desafio-login-lockout/internal/infra/api"
	"adalbertofjr/desafio-login-lockout/internal/lib/logger/sl"
)

func main() {
	config := loadConfigs()
	log := setupLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := setupBackend(log, config)
	tracker := lockout.NewTracker(backend,
		lockout.NewConfig(config.LockoutMaxAttempts, config.LockoutDuration, config.LockoutCleanupInterval, config.LockoutTTL),
		lockout.WithLogger(log),
	)
	go tracker.StartCleanupWorker(ctx)

	ajunRouter := ajun.NewRouter()
	ajunRouter.Use(middleware.RequestLogger(log))
	ajunRouter.HandleFunc("GET /health", api.HealthHandler)
	api.NewAttemptsHandler(log, tracker).Register(ajunRouter.HandleFunc)

	srv := &http.Server{
		Addr:              ":" + config.ServerPort,
		Handler:           ajunRouter.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting web server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", sl.Err(err))
	}
	if closer, ok := backend.(interface{ Close() error }); ok {
		closer.Close()
	}
	log.Info("server stopped")
}

func setupBackend(log *slog.Logger, config *configs.Config) lockout.Backend {
	switch strings.ToLower(config.LockoutStore) {
	case "redis":
		log.Info("using redis attempt store", slog.String("addr", config.LockoutRedisAddr))
		return lockout.NewRedisBackend(config.LockoutRedisAddr)
	default:
		log.Info("using in-memory attempt store")
		return lockout.NewMemoryBackend()
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func loadConfigs() *configs.Config {
	config, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}
	return config
}
