package main

import (
	"os"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/config"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/run"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/services"
)

func main() {
	cfg := config.Load()
	logger := run.NewLogger("sitemap")

	store, err := artifacts.NewStore(cfg.ExportDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open export directory")
	}

	service := services.NewSitemapService(store, cfg.StorefrontBaseURL, logger)
	if err := service.Generate(); err != nil {
		logger.WithError(err).Error("Sitemap generation failed")
		os.Exit(1)
	}
}
