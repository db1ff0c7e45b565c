package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

const skuKeyPrefix = "sku:"

// DedupeService partitions the extracted product set into products that are
// new to the target catalog and products the target already has, matched by
// slug or SKU. It is inspection tooling as much as a filter: the report is
// written on every run, even when nothing was excluded.
type DedupeService struct {
	target   clients.CatalogClient
	store    *artifacts.Store
	pageSize int
	logger   *logrus.Entry
}

// NewDedupeService creates a new dedupe service
func NewDedupeService(target clients.CatalogClient, store *artifacts.Store, pageSize int, logger *logrus.Entry) *DedupeService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &DedupeService{
		target:   target,
		store:    store,
		pageSize: pageSize,
		logger:   logger,
	}
}

// targetIndex is an O(1) lookup over the target catalog. Slug keys and SKU
// keys share one map; SKU keys carry a prefix so the namespaces can't
// collide.
type targetIndex map[string]*models.Product

func (idx targetIndex) bySlug(s string) *models.Product {
	return idx[slugKey(s)]
}

func (idx targetIndex) bySKU(sku string) *models.Product {
	return idx[skuKeyPrefix+sku]
}

func slugKey(s string) string {
	return slug.Make(s)
}

// Run executes the dedupe pass and writes the import set, the category
// map and the operator report.
func (s *DedupeService) Run(ctx context.Context) (*models.StageSummary, *models.ExportReport, error) {
	summary := &models.StageSummary{
		RunID:     uuid.NewString(),
		Stage:     "dedupe",
		StartedAt: time.Now(),
	}
	s.logger.WithField("runId", summary.RunID).Info("Dedupe started")

	var products []models.Product
	if err := s.store.Load(artifacts.ProductsFile, &products); err != nil {
		return summary, nil, err
	}

	index, err := s.buildTargetIndex(ctx)
	if err != nil {
		return summary, nil, fmt.Errorf("failed to index target catalog: %w", err)
	}

	report := &models.ExportReport{
		RunID:       summary.RunID,
		GeneratedAt: time.Now(),
		TotalSource: len(products),
		Duplicates:  []models.DuplicateEntry{},
	}

	var toImport []models.Product
	for i := range products {
		p := &products[i]
		summary.Processed++

		// Slug match takes precedence in the reported reason
		if index.bySlug(p.Slug) != nil {
			summary.Skipped++
			report.Duplicates = append(report.Duplicates, models.DuplicateEntry{
				Name:   p.Name,
				Slug:   p.Slug,
				SKU:    p.SKU,
				Reason: models.ReasonDuplicateSlug,
			})
			continue
		}
		if p.SKU != "" {
			if existing := index.bySKU(p.SKU); existing != nil {
				summary.Skipped++
				report.Duplicates = append(report.Duplicates, models.DuplicateEntry{
					Name:   p.Name,
					Slug:   p.Slug,
					SKU:    p.SKU,
					Reason: models.ReasonDuplicateSKU,
				})
				// A SKU held by a product under a different slug is worth a
				// closer look: it may be a rename, or a SKU collision.
				if slugKey(existing.Slug) != slugKey(p.Slug) {
					report.SKUConflicts = append(report.SKUConflicts, models.SKUConflict{
						Name:         p.Name,
						Slug:         p.Slug,
						SKU:          p.SKU,
						ExistingSlug: existing.Slug,
					})
				}
				continue
			}
		}

		summary.Succeeded++
		toImport = append(toImport, *p)
	}

	report.TotalNew = len(toImport)
	report.TotalSkipped = summary.Skipped

	if err := s.store.Save(artifacts.ProductsToImportFile, toImport); err != nil {
		return summary, nil, err
	}

	categoryMap, err := s.buildCategoryMap(ctx)
	if err != nil {
		return summary, nil, fmt.Errorf("failed to map target categories: %w", err)
	}
	if err := s.store.Save(artifacts.CategoryMappingFile, categoryMap); err != nil {
		return summary, nil, err
	}

	if err := s.store.Save(artifacts.ExportReportFile, report); err != nil {
		return summary, nil, err
	}
	if err := s.writeReportXLSX(report); err != nil {
		// The spreadsheet is an operator convenience; its failure never
		// invalidates the JSON report.
		s.logger.WithError(err).Warn("Failed to write XLSX report")
	}

	s.logger.WithFields(logrus.Fields{
		"source":       report.TotalSource,
		"new":          report.TotalNew,
		"duplicates":   report.TotalSkipped,
		"skuConflicts": len(report.SKUConflicts),
	}).Info("Dedupe completed")
	return summary, report, nil
}

// buildTargetIndex fetches the whole target catalog and indexes it by slug
// and by prefixed SKU.
func (s *DedupeService) buildTargetIndex(ctx context.Context) (targetIndex, error) {
	index := make(targetIndex)
	for page := 1; ; page++ {
		result, err := s.target.GetProducts(ctx, &clients.ListOptions{Page: page, PerPage: s.pageSize})
		if err != nil {
			return nil, err
		}
		if len(result.Products) == 0 {
			break
		}
		for i := range result.Products {
			p := &result.Products[i]
			index[slugKey(p.Slug)] = p
			if p.SKU != "" {
				index[skuKeyPrefix+p.SKU] = p
			}
		}
		if result.TotalPages > 0 && page >= result.TotalPages {
			break
		}
	}
	return index, nil
}

// buildCategoryMap maps target category slugs to their categories so the
// importer can reuse what already exists.
func (s *DedupeService) buildCategoryMap(ctx context.Context) (map[string]models.Category, error) {
	categoryMap := make(map[string]models.Category)
	for page := 1; ; page++ {
		result, err := s.target.GetCategories(ctx, &clients.ListOptions{Page: page, PerPage: s.pageSize})
		if err != nil {
			return nil, err
		}
		if len(result.Categories) == 0 {
			break
		}
		for _, c := range result.Categories {
			categoryMap[c.Slug] = c
		}
		if result.TotalPages > 0 && page >= result.TotalPages {
			break
		}
	}
	return categoryMap, nil
}

// writeReportXLSX writes the operator-review copy of the export report
func (s *DedupeService) writeReportXLSX(report *models.ExportReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Duplicados"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := []string{"Nombre", "Slug", "SKU", "Motivo"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "D1", headerStyle)

	for row, d := range report.Duplicates {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), d.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row+2), d.Slug)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row+2), d.SKU)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row+2), string(d.Reason))
	}

	summarySheet := "Resumen"
	f.NewSheet(summarySheet)
	f.SetCellValue(summarySheet, "A1", "Total origen")
	f.SetCellValue(summarySheet, "B1", report.TotalSource)
	f.SetCellValue(summarySheet, "A2", "Nuevos")
	f.SetCellValue(summarySheet, "B2", report.TotalNew)
	f.SetCellValue(summarySheet, "A3", "Duplicados")
	f.SetCellValue(summarySheet, "B3", report.TotalSkipped)

	return f.SaveAs(s.store.Path(artifacts.ExportReportXLSX))
}
