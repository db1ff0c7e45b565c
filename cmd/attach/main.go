package main

import (
	"flag"
	"os"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/config"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/images"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/run"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/services"
)

func main() {
	apply := flag.Bool("apply", false, "perform the image updates instead of previewing them")
	details := flag.Bool("details", false, "log every per-entity decision")
	limit := flag.Int("limit", 0, "cap the number of products processed (0 = all)")
	flag.Parse()

	cfg := config.Load()
	cfg.RequireTarget()
	logger := run.NewLogger("attach")

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

	target := run.TargetClient(cfg)
	if err := target.TestConnection(ctx); err != nil {
		logger.WithError(err).Fatal("Target catalog unreachable")
	}

	optimizer := images.NewOptimizer(images.OptimizerConfig{
		MaxUploadBytes: cfg.MediaMaxUploadBytes,
		MaxEdge:        cfg.ImageMaxEdge,
		JPEGQuality:    cfg.ImageJPEGQuality,
	})

	service := services.NewAttachService(target, store, cache, optimizer, logger)
	if _, err := service.Run(ctx, services.AttachOptions{
		Apply:   *apply,
		Details: *details,
		Limit:   *limit,
	}); err != nil {
		logger.WithError(err).Error("Image attach failed")
		os.Exit(1)
	}
}
