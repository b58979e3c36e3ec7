package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/query"
)

// ErrProductNotFound is returned for ids missing from the catalog
var ErrProductNotFound = errors.New("product not found")

// ProductService answers catalog queries against one immutable snapshot
type ProductService struct {
	catalog *catalog.Snapshot
	metrics *metrics.AppMetrics
	logger  *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(snapshot *catalog.Snapshot, m *metrics.AppMetrics, logger *zap.Logger) *ProductService {
	return &ProductService{
		catalog: snapshot,
		metrics: m,
		logger:  logger,
	}
}

// ListProducts filters by category, then by search text, then paginates
func (s *ProductService) ListProducts(ctx context.Context, params query.Params) models.ProductPage {
	page := query.Compose(s.catalog.Products(), params)

	category := params.Category
	if category == "" {
		category = query.AllCategories
	}
	s.metrics.ProductListings.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.String("product_category", category),
		attribute.Bool("search", params.Search != ""),
	})...))

	return page
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	p, ok := s.catalog.ByID(id)
	if !ok {
		s.metrics.ProductsNotFound.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{})...))
		s.logger.Debug("Product lookup missed", zap.Int64("product_id", id))
		return models.Product{}, ErrProductNotFound
	}

	s.metrics.ProductsViewed.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.Int64("product_id", id),
		attribute.String("product_category", p.Category),
	})...))

	return p, nil
}

// SearchProducts matches name, description, brand and category.
// A blank query returns an empty slice.
func (s *ProductService) SearchProducts(ctx context.Context, q string) []models.Product {
	results := query.SearchProducts(s.catalog.Products(), q)

	s.metrics.ProductSearches.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.Bool("has_results", len(results) > 0),
	})...))

	return results
}

// Categories returns the distinct categories and subcategories
func (s *ProductService) Categories() models.Categories {
	return s.catalog.Categories()
}

// Count returns the number of products in the catalog
func (s *ProductService) Count() int {
	return s.catalog.Len()
}
