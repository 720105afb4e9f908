package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gridlab/api"
	"gridlab/config"
	"gridlab/logger"
)

func main() {
	// Load .env (optional, environment variables win)
	_ = godotenv.Load()

	config.Init()
	cfg := config.Get()

	if err := logger.InitWithSimpleConfig(cfg.LogLevel); err != nil {
		logger.Fatalf("Failed to init logger: %v", err)
	}

	server := api.NewServer(cfg.APIServerPort)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("API server failed: %v", err)
		}
	case sig := <-quit:
		logger.Infof("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			logger.Errorf("Shutdown error: %v", err)
		}
	}

	logger.Info("Bye")
}
