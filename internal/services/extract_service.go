package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/images"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// ExtractService pulls categories, attributes and products out of the
// source catalog and snapshots them as JSON artifacts, downloading every
// referenced image into the local cache along the way.
type ExtractService struct {
	client   clients.CatalogClient
	store    *artifacts.Store
	cache    *images.Cache
	pageSize int
	logger   *logrus.Entry
}

// NewExtractService creates a new extract service
func NewExtractService(client clients.CatalogClient, store *artifacts.Store, cache *images.Cache, pageSize int, logger *logrus.Entry) *ExtractService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &ExtractService{
		client:   client,
		store:    store,
		cache:    cache,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Run executes a full extraction. A page-fetch failure is fatal to the
// whole run; an image download failure only costs that image its local
// path.
func (s *ExtractService) Run(ctx context.Context) (*models.StageSummary, error) {
	summary := &models.StageSummary{
		RunID:     uuid.NewString(),
		Stage:     "extract",
		StartedAt: time.Now(),
	}
	s.logger.WithField("runId", summary.RunID).Info("Extraction started")

	categories, err := s.extractCategories(ctx)
	if err != nil {
		return summary, fmt.Errorf("category extraction failed: %w", err)
	}
	if err := s.store.Save(artifacts.CategoriesFile, categories); err != nil {
		return summary, err
	}
	s.logger.WithField("count", len(categories)).Info("Categories extracted")

	attributes, err := s.extractAttributes(ctx)
	if err != nil {
		return summary, fmt.Errorf("attribute extraction failed: %w", err)
	}
	if err := s.store.Save(artifacts.AttributesFile, attributes); err != nil {
		return summary, err
	}
	s.logger.WithField("count", len(attributes)).Info("Attributes extracted")

	products, err := s.extractProducts(ctx, summary)
	if err != nil {
		return summary, fmt.Errorf("product extraction failed: %w", err)
	}
	if err := s.store.Save(artifacts.ProductsFile, products); err != nil {
		return summary, err
	}

	s.logger.WithFields(logrus.Fields{
		"products":     len(products),
		"imagesOk":     summary.Succeeded,
		"imagesFailed": summary.Failed,
	}).Info("Extraction completed")
	return summary, nil
}

// extractCategories pages through the source category list
func (s *ExtractService) extractCategories(ctx context.Context) ([]models.Category, error) {
	var all []models.Category
	for page := 1; ; page++ {
		result, err := s.client.GetCategories(ctx, &clients.ListOptions{Page: page, PerPage: s.pageSize})
		if err != nil {
			return nil, err
		}
		if len(result.Categories) == 0 {
			break
		}
		all = append(all, result.Categories...)
		if result.TotalPages > 0 && page >= result.TotalPages {
			break
		}
	}
	return all, nil
}

// extractAttributes fetches attribute definitions and resolves each term list
func (s *ExtractService) extractAttributes(ctx context.Context) ([]models.Attribute, error) {
	attributes, err := s.client.GetAttributes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range attributes {
		terms, err := s.client.GetAttributeTerms(ctx, attributes[i].ID)
		if err != nil {
			return nil, err
		}
		attributes[i].Terms = terms
	}
	return attributes, nil
}

// extractProducts pages through products, expands variable products with
// their variation lists, and downloads every image.
func (s *ExtractService) extractProducts(ctx context.Context, summary *models.StageSummary) ([]models.Product, error) {
	var all []models.Product
	for page := 1; ; page++ {
		result, err := s.client.GetProducts(ctx, &clients.ListOptions{Page: page, PerPage: s.pageSize})
		if err != nil {
			return nil, err
		}
		if len(result.Products) == 0 {
			break
		}
		s.logger.WithFields(logrus.Fields{
			"page":  page,
			"count": len(result.Products),
		}).Info("Products page fetched")

		for i := range result.Products {
			product := &result.Products[i]
			if err := s.expandProduct(ctx, product); err != nil {
				return nil, err
			}
			s.downloadProductImages(ctx, product, summary)
			summary.Processed++
		}

		all = append(all, result.Products...)
		if result.TotalPages > 0 && page >= result.TotalPages {
			break
		}
	}
	return all, nil
}

// expandProduct fetches the full variation list of a variable product
func (s *ExtractService) expandProduct(ctx context.Context, product *models.Product) error {
	if !product.IsVariable() {
		return nil
	}
	for page := 1; ; page++ {
		variations, err := s.client.GetVariations(ctx, product.ID, &clients.ListOptions{Page: page, PerPage: s.pageSize})
		if err != nil {
			return fmt.Errorf("failed to fetch variations of product %d: %w", product.ID, err)
		}
		if len(variations) == 0 {
			break
		}
		product.VariationData = append(product.VariationData, variations...)
		if len(variations) < s.pageSize {
			break
		}
	}
	return nil
}

// downloadProductImages caches every image of the product and its
// variations, annotating each record with its local path and owner tuple.
// Failures are logged and leave the record without a local path.
func (s *ExtractService) downloadProductImages(ctx context.Context, product *models.Product, summary *models.StageSummary) {
	for i := range product.Images {
		img := &product.Images[i]
		img.OwnerType = models.ImageOwnerProduct
		img.OwnerOldID = product.ID

		name := images.FileName(models.ImageOwnerProduct, product.ID, img.ID, img.Src)
		local, err := s.cache.Download(ctx, img.Src, name)
		if err != nil {
			summary.Failed++
			s.logger.WithFields(logrus.Fields{
				"productId": product.ID,
				"src":       img.Src,
				"error":     err.Error(),
			}).Warn("Image download failed")
			continue
		}
		img.LocalPath = local
		summary.Succeeded++
	}

	for i := range product.VariationData {
		variation := &product.VariationData[i]
		if variation.Image == nil || variation.Image.Src == "" {
			continue
		}
		img := variation.Image
		img.OwnerType = models.ImageOwnerVariation
		img.OwnerOldID = variation.ID

		name := images.FileName(models.ImageOwnerVariation, variation.ID, img.ID, img.Src)
		local, err := s.cache.Download(ctx, img.Src, name)
		if err != nil {
			summary.Failed++
			s.logger.WithFields(logrus.Fields{
				"variationId": variation.ID,
				"src":         img.Src,
				"error":       err.Error(),
			}).Warn("Variation image download failed")
			continue
		}
		img.LocalPath = local
		summary.Succeeded++
	}
}

// RetryDownloads re-walks the extracted product snapshot and re-attempts
// every image that still has no local path, then records what the cache
// now holds in downloaded-images-mapping.json.
func (s *ExtractService) RetryDownloads(ctx context.Context) (*models.StageSummary, error) {
	summary := &models.StageSummary{
		RunID:     uuid.NewString(),
		Stage:     "fetch-images",
		StartedAt: time.Now(),
	}

	var products []models.Product
	if err := s.store.Load(artifacts.ProductsFile, &products); err != nil {
		return summary, err
	}

	var downloaded []models.DownloadedImage
	record := func(img *models.ImageRef) {
		summary.Processed++
		if img.LocalPath == "" {
			name := images.FileName(img.OwnerType, img.OwnerOldID, img.ID, img.Src)
			local, err := s.cache.Download(ctx, img.Src, name)
			if err != nil {
				summary.Failed++
				s.logger.WithFields(logrus.Fields{
					"src":   img.Src,
					"error": err.Error(),
				}).Warn("Image retry failed")
				return
			}
			img.LocalPath = local
		}
		summary.Succeeded++
		downloaded = append(downloaded, models.DownloadedImage{
			OwnerType:  img.OwnerType,
			OwnerOldID: img.OwnerOldID,
			Src:        img.Src,
			LocalPath:  img.LocalPath,
		})
	}

	for i := range products {
		for j := range products[i].Images {
			record(&products[i].Images[j])
		}
		for j := range products[i].VariationData {
			if img := products[i].VariationData[j].Image; img != nil && img.Src != "" {
				record(img)
			}
		}
	}

	if err := s.store.Save(artifacts.ProductsFile, products); err != nil {
		return summary, err
	}
	if err := s.store.Save(artifacts.DownloadedImagesFile, downloaded); err != nil {
		return summary, err
	}

	s.logger.WithFields(logrus.Fields{
		"total":  summary.Processed,
		"ok":     summary.Succeeded,
		"failed": summary.Failed,
	}).Info("Image retry completed")
	return summary, nil
}
