package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapu/speech-archive-go/internal/api"
	"github.com/kapu/speech-archive-go/internal/archive"
	"github.com/kapu/speech-archive-go/internal/config"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Archive API starting...",
		zap.String("version", "1.0.0-go"),
		zap.String("data_dir", cfg.Archive.DataDir),
	)

	store, err := archive.NewStore(cfg.Archive.DataDir, logger)
	if err != nil {
		logger.Error("Failed to open archive store", zap.Error(err))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		VideoHandler: api.NewVideoHandler(store, logger),
		AllowOrigins: cfg.API.AllowOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: constants.APIConfig.ReadHeaderTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	logger.Info("API listening", zap.Int("port", cfg.API.Port))

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("Server error", zap.Error(err))
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.Timeouts.Shutdown)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
