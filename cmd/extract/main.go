package main

import (
	"os"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/config"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/images"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/run"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/services"
)

func main() {
	cfg := config.Load()
	cfg.RequireSource()
	logger := run.NewLogger("extract")

	ctx, cancel := run.SignalContext()
	defer cancel()

	store, err := artifacts.NewStore(cfg.ExportDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open export directory")
	}
	cache, err := images.NewCache(cfg.ImageDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open image cache")
	}

	source := run.SourceClient(cfg)
	if err := source.TestConnection(ctx); err != nil {
		logger.WithError(err).Fatal("Source catalog unreachable")
	}

	service := services.NewExtractService(source, store, cache, cfg.PageSize, logger)
	if _, err := service.Run(ctx); err != nil {
		logger.WithError(err).Error("Extraction failed")
		os.Exit(1)
	}
}
