package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/speech-archive-go/internal/app"
	"github.com/kapu/speech-archive-go/internal/config"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/pipeline"
	"github.com/kapu/speech-archive-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Speech archiver starting...",
		zap.String("version", "1.0.0-go"),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), constants.Timeouts.Startup)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}

	pipe := container.NewPipeline()

	// Create context with cancellation for runtime lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	type runResult struct {
		report *pipeline.Report
		err    error
	}

	resCh := make(chan runResult, 1)
	go func() {
		report, runErr := pipe.Run(ctx, container.Sources)
		resCh <- runResult{report: report, err: runErr}
	}()

	logger.Info("Archive run started",
		zap.Int("channels", len(container.Sources)),
		zap.Int("video_workers", cfg.Pipeline.VideoWorkers))

	var result runResult
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal, waiting for in-flight videos", zap.String("signal", sig.String()))
		cancel()

		// Cancellation aborts in-flight downloads and recognitions, so
		// the workers drain well inside the shutdown window.
		select {
		case result = <-resCh:
		case <-time.After(constants.Timeouts.Shutdown):
			logger.Error("Shutdown timed out before workers finished")
			container.Close()
			os.Exit(1)
		}
	case result = <-resCh:
	}

	if result.report != nil {
		printReport(result.report)
	}

	if result.err != nil && !errors.Is(result.err, context.Canceled) {
		logger.Error("Archive run failed", zap.Error(result.err))
		container.Close()
		os.Exit(1)
	}

	container.Close()
	logger.Info("Shutdown complete")
}

func printReport(report *pipeline.Report) {
	fmt.Println("Run report:")
	fmt.Printf("  discovered:        %d\n", report.Discovered)
	fmt.Printf("  filtered out:      %d\n", report.FilteredOut)
	fmt.Printf("  filtered in:       %d\n", report.FilteredIn)

	for _, level := range []domain.CommentaryLevel{
		domain.CommentaryNone,
		domain.CommentaryMinimal,
		domain.CommentarySubstantial,
		domain.CommentaryUndetermined,
		domain.CommentaryError,
	} {
		if count, ok := report.ByLevel[level]; ok {
			fmt.Printf("  %-18s %d\n", string(level)+":", count)
		}
	}

	fmt.Printf("  already archived:  %d\n", report.AlreadyArchived)
	fmt.Printf("  skipped:           %d\n", report.Skipped)
	fmt.Printf("  persisted:         %d\n", report.Persisted)
	fmt.Printf("  errors:            %d\n", report.Errors)
	fmt.Printf("  duration:          %s\n", report.Duration.Round(time.Second))
}
