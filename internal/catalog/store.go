// Package catalog holds the immutable product snapshot served by the API.
package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Source produces the full product list once at startup
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// Snapshot is a read-only view of the catalog. It is safe for concurrent
// use because nothing modifies it after Load returns.
type Snapshot struct {
	products   []models.Product
	byID       map[int64]int
	categories models.Categories
	loadedAt   time.Time
}

// NewSnapshot indexes products. Duplicate ids keep the first occurrence.
func NewSnapshot(products []models.Product) *Snapshot {
	s := &Snapshot{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[int64]int, len(products)),
		categories: models.Categories{
			Categories:    []string{},
			Subcategories: []string{},
		},
		loadedAt: time.Now(),
	}

	seenCategory := make(map[string]struct{})
	seenSubcategory := make(map[string]struct{})
	for _, p := range products {
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)

		if _, ok := seenCategory[p.Category]; !ok {
			seenCategory[p.Category] = struct{}{}
			s.categories.Categories = append(s.categories.Categories, p.Category)
		}
		if _, ok := seenSubcategory[p.Subcategory]; !ok {
			seenSubcategory[p.Subcategory] = struct{}{}
			s.categories.Subcategories = append(s.categories.Subcategories, p.Subcategory)
		}
	}
	return s
}

// Empty returns a snapshot with no products
func Empty() *Snapshot {
	return NewSnapshot(nil)
}

// Load reads src exactly once. A failing source is logged and yields an
// empty snapshot so the server keeps running.
func Load(ctx context.Context, src Source, logger *zap.Logger) *Snapshot {
	start := time.Now()
	products, err := src.Products(ctx)
	if err != nil {
		logger.Error("Failed to load product catalog, serving an empty catalog", zap.Error(err))
		return Empty()
	}

	s := NewSnapshot(products)
	if dropped := len(products) - s.Len(); dropped > 0 {
		logger.Warn("Ignored products with duplicate ids", zap.Int("dropped", dropped))
	}
	logger.Info("Product catalog loaded",
		zap.Int("products", s.Len()),
		zap.Int("categories", len(s.categories.Categories)),
		zap.Duration("duration", time.Since(start)),
	)
	return s
}

// Products returns the catalog in source order. The slice is shared and
// must not be modified.
func (s *Snapshot) Products() []models.Product {
	return s.products
}

// Len returns the number of products
func (s *Snapshot) Len() int {
	return len(s.products)
}

// ByID looks up a product by id
func (s *Snapshot) ByID(id int64) (models.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}

// Categories returns the distinct categories and subcategories in first-seen order
func (s *Snapshot) Categories() models.Categories {
	return models.Categories{
		Categories:    append([]string{}, s.categories.Categories...),
		Subcategories: append([]string{}, s.categories.Subcategories...),
	}
}

// LoadedAt returns when the snapshot was built
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}
