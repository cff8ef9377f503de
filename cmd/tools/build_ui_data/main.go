package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kapu/speech-archive-go/internal/archive"
	"github.com/kapu/speech-archive-go/internal/config"
	"github.com/kapu/speech-archive-go/internal/uidata"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	store, err := archive.NewStore(cfg.Archive.DataDir, logger)
	if err != nil {
		logger.Fatal("failed to open archive store", zap.Error(err))
	}

	builder, err := uidata.NewBuilder(store, filepath.Join(cfg.Archive.DataDir, "ui"), logger)
	if err != nil {
		logger.Fatal("failed to create UI data builder", zap.Error(err))
	}

	index, err := builder.Build()
	if err != nil {
		logger.Fatal("failed to build UI data", zap.Error(err))
	}

	fmt.Printf("Generated UI data for %d videos\n", index.Total)
}
