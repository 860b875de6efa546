package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"human-ai-chat/backend/pkg/config"
	"human-ai-chat/backend/pkg/di"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/metrics"
	"human-ai-chat/backend/pkg/router"
)

func main() {
	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("starting server", "env", cfg.Server.Env, "data_dir", cfg.Paths.DataDir)

	if err := cfg.EnsureDirs(); err != nil {
		log.LogError(err, "failed to create data directories")
		os.Exit(1)
	}

	m := metrics.New().WithGoCollectors()

	container := di.New(cfg, log, m)
	log.Info("collections loaded",
		"users", container.Users.Len(),
		"characters", container.Characters.Len(),
		"chats", container.Chats.Len(),
		"voices", container.Voices.Len(),
	)

	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
