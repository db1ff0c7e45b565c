package models

import "time"

// DuplicateReason explains why a product was excluded from the import set
type DuplicateReason string

const (
	ReasonDuplicateSlug DuplicateReason = "slug duplicado"
	ReasonDuplicateSKU  DuplicateReason = "sku duplicado"
)

// DuplicateEntry is one excluded product in the export report
type DuplicateEntry struct {
	Name   string          `json:"name"`
	Slug   string          `json:"slug"`
	SKU    string          `json:"sku,omitempty"`
	Reason DuplicateReason `json:"reason"`
}

// SKUConflict flags a SKU that matches an existing target product under a
// different slug. These are warnings for the operator, not exclusions.
type SKUConflict struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	SKU          string `json:"sku"`
	ExistingSlug string `json:"existingSlug"`
}

// ExportReport summarises a dedupe run for operator review. It is written
// on every run, including runs with zero duplicates.
type ExportReport struct {
	RunID        string           `json:"runId"`
	GeneratedAt  time.Time        `json:"generatedAt"`
	TotalSource  int              `json:"totalSource"`
	TotalNew     int              `json:"totalNew"`
	TotalSkipped int              `json:"totalSkipped"`
	Duplicates   []DuplicateEntry `json:"duplicates"`
	SKUConflicts []SKUConflict    `json:"skuConflicts,omitempty"`
}

// StageSummary is the final console tally every stage prints and returns
type StageSummary struct {
	RunID     string    `json:"runId"`
	Stage     string    `json:"stage"`
	StartedAt time.Time `json:"startedAt"`
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// DownloadedImage is one entry of downloaded-images-mapping.json, produced
// by the image download retry helper.
type DownloadedImage struct {
	OwnerType  ImageOwnerType `json:"ownerType"`
	OwnerOldID int            `json:"ownerOldId"`
	Src        string         `json:"src"`
	LocalPath  string         `json:"localPath"`
}
