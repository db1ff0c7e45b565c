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
	cfg.RequireTarget()
	logger := run.NewLogger("sync")

	ctx, cancel := run.SignalContext()
	defer cancel()

	store, err := artifacts.NewStore(cfg.ExportDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open export directory")
	}

	target := run.TargetClient(cfg)
	if err := target.TestConnection(ctx); err != nil {
		logger.WithError(err).Fatal("Target catalog unreachable")
	}

	service := services.NewImportService(target, store, logger)
	if _, _, err := service.Run(ctx); err != nil {
		logger.WithError(err).Error("Import failed")
		os.Exit(1)
	}
}
