package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/formats"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// ImportService replays an extracted category and product set onto the
// target catalog and emits the id mapping the image attacher consumes.
// Images never travel through this stage: structure creation must not be
// entangled with slow uploads or image failures.
type ImportService struct {
	target clients.CatalogClient
	store  *artifacts.Store
	logger *logrus.Entry
}

// NewImportService creates a new import service
func NewImportService(target clients.CatalogClient, store *artifacts.Store, logger *logrus.Entry) *ImportService {
	return &ImportService{
		target: target,
		store:  store,
		logger: logger,
	}
}

// Run replays categories then products and persists the id mapping. The
// mapping is written once at the end of the run; a crash mid-run means a
// full rerun, which duplicate detection makes safe.
func (s *ImportService) Run(ctx context.Context) (*models.StageSummary, *models.IDMapping, error) {
	summary := &models.StageSummary{
		RunID:     uuid.NewString(),
		Stage:     "sync",
		StartedAt: time.Now(),
	}
	s.logger.WithField("runId", summary.RunID).Info("Import started")

	var categories []models.Category
	if err := s.store.Load(artifacts.CategoriesFile, &categories); err != nil {
		return summary, nil, err
	}

	products, err := s.loadImportSet()
	if err != nil {
		return summary, nil, err
	}

	mapping := models.NewIDMapping()
	s.seedExistingCategories(mapping, categories)

	if err := s.importCategories(ctx, categories, mapping); err != nil {
		return summary, nil, err
	}

	for i := range products {
		summary.Processed++
		if err := s.importProduct(ctx, &products[i], mapping); err != nil {
			summary.Failed++
			s.logger.WithFields(logrus.Fields{
				"productId": products[i].ID,
				"slug":      products[i].Slug,
				"error":     err.Error(),
			}).Error("Product import failed")
			continue
		}
		summary.Succeeded++
	}

	if err := s.store.Save(artifacts.SyncMappingFile, mapping); err != nil {
		return summary, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"categories": len(mapping.Categories),
		"products":   summary.Succeeded,
		"failed":     summary.Failed,
	}).Info("Import completed")
	return summary, mapping, nil
}

// loadImportSet prefers the deduplicated set, falling back to the raw
// snapshot when the dedupe stage was skipped.
func (s *ImportService) loadImportSet() ([]models.Product, error) {
	var products []models.Product
	if s.store.Exists(artifacts.ProductsToImportFile) {
		if err := s.store.Load(artifacts.ProductsToImportFile, &products); err != nil {
			return nil, err
		}
		return products, nil
	}
	s.logger.Warn("No deduplicated import set found, importing the full snapshot")
	if err := s.store.Load(artifacts.ProductsFile, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// seedExistingCategories pre-resolves source categories whose slugs the
// dedupe stage already found on the target.
func (s *ImportService) seedExistingCategories(mapping *models.IDMapping, categories []models.Category) {
	if !s.store.Exists(artifacts.CategoryMappingFile) {
		return
	}
	var existing map[string]models.Category
	if err := s.store.Load(artifacts.CategoryMappingFile, &existing); err != nil {
		s.logger.WithError(err).Warn("Ignoring unreadable category map")
		return
	}
	for _, c := range categories {
		if target, ok := existing[c.Slug]; ok {
			mapping.Categories[c.ID] = target.ID
		}
	}
}

// importCategories creates categories parent-before-child using a
// fixed-point pass: every round creates the categories whose parent is
// root or already mapped, and repeats until no progress is made. This
// handles arbitrary tree depth and non-monotonic id assignment.
func (s *ImportService) importCategories(ctx context.Context, categories []models.Category, mapping *models.IDMapping) error {
	pending := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if _, done := mapping.Categories[c.ID]; !done {
			pending = append(pending, c)
		}
	}

	for len(pending) > 0 {
		var next []models.Category
		progress := false

		for _, c := range pending {
			parentNewID := 0
			if c.Parent != 0 {
				resolved, ok := mapping.ResolveCategory(c.Parent)
				if !ok {
					next = append(next, c)
					continue
				}
				parentNewID = resolved
			}

			newID, err := s.createOrResolveCategory(ctx, &c, parentNewID)
			if err != nil {
				return fmt.Errorf("failed to create category %q: %w", c.Slug, err)
			}
			mapping.Categories[c.ID] = newID
			progress = true
		}

		if !progress {
			// Remaining categories reference parents outside the source set
			for _, c := range next {
				s.logger.WithFields(logrus.Fields{
					"categoryId": c.ID,
					"parent":     c.Parent,
				}).Warn("Category parent not found in source set, creating as root")
				newID, err := s.createOrResolveCategory(ctx, &c, 0)
				if err != nil {
					return fmt.Errorf("failed to create category %q: %w", c.Slug, err)
				}
				mapping.Categories[c.ID] = newID
			}
			break
		}
		pending = next
	}
	return nil
}

// createOrResolveCategory creates a category, falling back to a slug
// lookup when the target rejects the slug as already taken.
func (s *ImportService) createOrResolveCategory(ctx context.Context, c *models.Category, parentNewID int) (int, error) {
	created, err := s.target.CreateCategory(ctx, c, parentNewID)
	if err == nil {
		return created.ID, nil
	}
	if !clients.IsDuplicateTerm(err) {
		return 0, err
	}

	existing, lookupErr := s.target.FindCategoryBySlug(ctx, c.Slug)
	if lookupErr != nil {
		return 0, fmt.Errorf("duplicate slug but lookup failed: %w", lookupErr)
	}
	s.logger.WithFields(logrus.Fields{
		"slug":  c.Slug,
		"newId": existing.ID,
	}).Info("Category already exists, reusing")
	return existing.ID, nil
}

// importProduct creates one product (and its variations) on the target.
// Category references that fail to resolve are dropped rather than failing
// the product.
func (s *ImportService) importProduct(ctx context.Context, p *models.Product, mapping *models.IDMapping) error {
	var categoryIDs []int
	for _, ref := range p.Categories {
		newID, ok := mapping.ResolveCategory(ref.ID)
		if !ok {
			s.logger.WithFields(logrus.Fields{
				"productId":  p.ID,
				"categoryId": ref.ID,
			}).Warn("Dropping unmapped category reference")
			continue
		}
		categoryIDs = append(categoryIDs, newID)
	}

	clean := *p
	clean.Description = formats.CleanDescription(p.Description)
	clean.ShortDesc = formats.CleanDescription(p.ShortDesc)

	created, err := s.target.CreateProduct(ctx, &clean, categoryIDs)
	if err != nil {
		return err
	}
	mapping.AddProduct(p.ID, created.ID, p.Images)

	if !p.IsVariable() {
		return nil
	}

	// A variation failure after the parent succeeded leaves the product
	// partially created; cleanup is by rerun, not rollback.
	for i := range p.VariationData {
		v := &p.VariationData[i]
		createdVar, err := s.target.CreateVariation(ctx, created.ID, v)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"productId":   p.ID,
				"variationId": v.ID,
				"error":       err.Error(),
			}).Error("Variation creation failed")
			continue
		}
		mapping.AddVariation(p.ID, v.ID, createdVar.ID, v.Image)
	}
	return nil
}
