package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
)

const listProductsQuery = `SELECT id, name, brand, category, subcategory, description, price, original_price,
image, rating, reviews, stock, features, specifications FROM products ORDER BY id`

// Querier is the subset of *sql.DB used to read the catalog
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ProductSource reads the whole catalog from the products table.
// The features and specifications columns hold JSON documents.
type ProductSource struct {
	db      Querier
	metrics *metrics.AppMetrics
}

// NewProductSource creates a MySQL-backed catalog source
func NewProductSource(db Querier, m *metrics.AppMetrics) *ProductSource {
	return &ProductSource{db: db, metrics: m}
}

// Products implements catalog.Source
func (s *ProductSource) Products(ctx context.Context) ([]models.Product, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, listProductsQuery)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", listProductsQuery, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var (
		p              models.Product
		originalPrice  sql.NullFloat64
		rating         sql.NullFloat64
		reviews        sql.NullInt64
		features       sql.NullString
		specifications sql.NullString
	)

	if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Subcategory, &p.Description, &p.Price,
		&originalPrice, &p.Image, &rating, &reviews, &p.Stock, &features, &specifications); err != nil {
		return p, fmt.Errorf("failed to scan product: %w", err)
	}

	if originalPrice.Valid {
		p.OriginalPrice = &originalPrice.Float64
	}
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	if reviews.Valid {
		n := int(reviews.Int64)
		p.Reviews = &n
	}

	p.Features = []string{}
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &p.Features); err != nil {
			return p, fmt.Errorf("invalid features for product %d: %w", p.ID, err)
		}
	}
	p.Specifications = map[string]string{}
	if specifications.Valid && specifications.String != "" {
		if err := json.Unmarshal([]byte(specifications.String), &p.Specifications); err != nil {
			return p, fmt.Errorf("invalid specifications for product %d: %w", p.ID, err)
		}
	}

	return p, nil
}
