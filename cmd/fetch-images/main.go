package main

import (
	"os"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/config"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/images"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/run"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/services"
)

// fetch-images re-attempts every image the extractor failed to download
// and records the final cache state in downloaded-images-mapping.json.
func main() {
	cfg := config.Load()
	cfg.RequireSource()
	logger := run.NewLogger("fetch-images")

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

	service := services.NewExtractService(run.SourceClient(cfg), store, cache, cfg.PageSize, logger)
	if _, err := service.RetryDownloads(ctx); err != nil {
		logger.WithError(err).Error("Image retry failed")
		os.Exit(1)
	}
}
