package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/images"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// AttachOptions controls an image attach run. Runs are dry-run previews
// unless Apply is set.
type AttachOptions struct {
	Apply   bool
	Details bool
	Limit   int // cap on products processed; 0 means no cap
}

// AttachResult tallies an attach run. Image-level and product-level
// failures are counted separately.
type AttachResult struct {
	Summary          models.StageSummary
	ImagesResolved   int
	ImagesUnresolved int
	ImagesUploaded   int
	ImagesReused     int
	ProductsUpdated  int
	ProductFailures  int
	VariationsDone   int
}

// AttachService pushes the original image sets onto the target entities
// recorded in the id mapping. Each product gets a single replace-the-list
// update so the target ends up mirroring the source exactly.
type AttachService struct {
	target    clients.CatalogClient
	store     *artifacts.Store
	cache     *images.Cache
	optimizer *images.Optimizer
	logger    *logrus.Entry
}

// NewAttachService creates a new attach service
func NewAttachService(target clients.CatalogClient, store *artifacts.Store, cache *images.Cache, optimizer *images.Optimizer, logger *logrus.Entry) *AttachService {
	return &AttachService{
		target:    target,
		store:     store,
		cache:     cache,
		optimizer: optimizer,
		logger:    logger,
	}
}

// Run attaches images for every mapped product, then its variations. The
// mapping is re-persisted afterwards so uploaded media ids survive into
// the next run and are never uploaded twice.
func (s *AttachService) Run(ctx context.Context, opts AttachOptions) (*AttachResult, error) {
	result := &AttachResult{
		Summary: models.StageSummary{
			RunID:     uuid.NewString(),
			Stage:     "attach",
			StartedAt: time.Now(),
		},
	}
	s.logger.WithFields(logrus.Fields{
		"runId": result.Summary.RunID,
		"apply": opts.Apply,
		"limit": opts.Limit,
	}).Info("Image attach started")

	mapping := models.NewIDMapping()
	if err := s.store.Load(artifacts.SyncMappingFile, mapping); err != nil {
		return result, err
	}

	// Deterministic order over the map for stable logs and --limit runs
	oldIDs := make([]int, 0, len(mapping.Products))
	for oldID := range mapping.Products {
		oldIDs = append(oldIDs, oldID)
	}
	sort.Ints(oldIDs)

	for _, oldID := range oldIDs {
		if opts.Limit > 0 && result.Summary.Processed >= opts.Limit {
			break
		}
		result.Summary.Processed++

		pm := mapping.Products[oldID]
		s.attachProduct(ctx, oldID, &pm, opts, result)
		mapping.Products[oldID] = pm
	}

	if opts.Apply {
		if err := s.store.Save(artifacts.SyncMappingFile, mapping); err != nil {
			return result, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"products":   result.ProductsUpdated,
		"variations": result.VariationsDone,
		"uploaded":   result.ImagesUploaded,
		"reused":     result.ImagesReused,
		"unresolved": result.ImagesUnresolved,
		"failed":     result.ProductFailures,
	}).Info("Image attach completed")
	return result, nil
}

// attachProduct resolves and pushes the product's image list, then its
// variations' single images.
func (s *AttachService) attachProduct(ctx context.Context, oldID int, pm *models.ProductMapping, opts AttachOptions, result *AttachResult) {
	var payloads []clients.ImagePayload
	for i := range pm.OldImages {
		img := &pm.OldImages[i]
		payload, ok := s.resolveImage(ctx, img, opts, result)
		if !ok {
			continue
		}
		payloads = append(payloads, payload)
	}

	if len(payloads) == 0 {
		result.Summary.Skipped++
		if opts.Details {
			s.logger.WithField("productId", oldID).Info("No resolvable images, skipping")
		}
		return
	}

	if opts.Details {
		s.logger.WithFields(logrus.Fields{
			"productId": oldID,
			"newId":     pm.NewID,
			"images":    len(payloads),
		}).Info("Replacing product image list")
	}

	if opts.Apply {
		if err := s.target.UpdateProductImages(ctx, pm.NewID, payloads); err != nil {
			result.ProductFailures++
			s.logger.WithFields(logrus.Fields{
				"productId": oldID,
				"newId":     pm.NewID,
				"error":     err.Error(),
			}).Error("Product image update failed")
			return
		}
	}
	result.ProductsUpdated++
	result.Summary.Succeeded++

	// Variations after their product
	varOldIDs := make([]int, 0, len(pm.Variations))
	for id := range pm.Variations {
		varOldIDs = append(varOldIDs, id)
	}
	sort.Ints(varOldIDs)

	for _, varOldID := range varOldIDs {
		vm := pm.Variations[varOldID]
		if vm.Image == nil || vm.Image.Src == "" {
			continue
		}
		payload, ok := s.resolveImage(ctx, vm.Image, opts, result)
		if !ok {
			continue
		}
		if opts.Apply {
			if err := s.target.UpdateVariationImage(ctx, pm.NewID, vm.NewID, payload); err != nil {
				// One bad variation image never aborts the batch
				result.ImagesUnresolved++
				if opts.Details {
					s.logger.WithFields(logrus.Fields{
						"variationId": varOldID,
						"error":       err.Error(),
					}).Warn("Variation image update failed")
				}
				continue
			}
		}
		pm.Variations[varOldID] = vm
		result.VariationsDone++
	}
}

// resolveImage turns an image record into an upload payload, trying in
// order: an already-known target media id, an upload of the cached local
// file, then the remote URL passed through for the platform to fetch
// server-side.
func (s *AttachService) resolveImage(ctx context.Context, img *models.ImageRef, opts AttachOptions, result *AttachResult) (clients.ImagePayload, bool) {
	if img.TargetMediaID != 0 {
		result.ImagesResolved++
		result.ImagesReused++
		return clients.ImagePayload{ID: img.TargetMediaID, Alt: img.Alt}, true
	}

	if img.LocalPath != "" && s.cache.Has(img.LocalPath) {
		if !opts.Apply {
			// Preview runs report the local file as resolvable without
			// touching the media store
			result.ImagesResolved++
			return clients.ImagePayload{Src: img.Src, Alt: img.Alt}, true
		}

		prepared, err := s.optimizer.Prepare(s.cache.Path(img.LocalPath))
		if err == nil {
			media, uploadErr := s.target.UploadMedia(ctx, prepared.FileName, prepared.Data)
			if uploadErr == nil {
				img.TargetMediaID = media.ID
				result.ImagesResolved++
				result.ImagesUploaded++
				return clients.ImagePayload{ID: media.ID, Alt: img.Alt}, true
			}
			err = uploadErr
		}
		if opts.Details {
			s.logger.WithFields(logrus.Fields{
				"file":  img.LocalPath,
				"error": err.Error(),
			}).Warn("Local upload failed, falling back to source URL")
		}
	}

	if img.Src != "" {
		result.ImagesResolved++
		return clients.ImagePayload{Src: img.Src, Alt: img.Alt}, true
	}

	result.ImagesUnresolved++
	return clients.ImagePayload{}, false
}
