package services

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// SitemapService renders sitemap.xml for the storefront from the extracted
// catalog snapshots.
type SitemapService struct {
	store   *artifacts.Store
	baseURL string
	logger  *logrus.Entry
}

// NewSitemapService creates a new sitemap service
func NewSitemapService(store *artifacts.Store, baseURL string, logger *logrus.Entry) *SitemapService {
	return &SitemapService{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Generate writes sitemap.xml from the products and categories snapshots
func (s *SitemapService) Generate() error {
	if s.baseURL == "" {
		return fmt.Errorf("storefront base URL not configured")
	}

	var products []models.Product
	if err := s.store.Load(artifacts.ProductsFile, &products); err != nil {
		return err
	}
	var categories []models.Category
	if err := s.store.Load(artifacts.CategoriesFile, &categories); err != nil {
		return err
	}

	today := time.Now().Format("2006-01-02")
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: s.baseURL + "/", LastMod: today, ChangeFreq: "weekly", Priority: "1.0"},
			{Loc: s.baseURL + "/tienda", LastMod: today, ChangeFreq: "weekly", Priority: "0.9"},
		},
	}

	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/categoria/%s", s.baseURL, c.Slug),
			LastMod:    today,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	for _, p := range products {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/producto/%s", s.baseURL, p.Slug),
			LastMod:    today,
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render sitemap: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	if err := os.WriteFile(s.store.Path(artifacts.SitemapFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	s.logger.WithField("urls", len(set.URLs)).Info("Sitemap generated")
	return nil
}
