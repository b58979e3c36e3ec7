// Package query implements the catalog query engine: category filtering,
// substring search and pagination over an immutable product slice.
//
// Every function is pure. Inputs are never modified, and results may share
// backing arrays with their inputs, so callers must treat them as read-only.
package query

import (
	"strings"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

const (
	// AllCategories disables category filtering
	AllCategories = "All"

	// DefaultPage is the first page
	DefaultPage = 1

	// DefaultLimit is used whenever a non-positive page size is requested
	DefaultLimit = 20
)

// Field selects a product field to search
type Field int

const (
	FieldName Field = iota
	FieldDescription
	FieldBrand
	FieldCategory
)

var (
	// ListFields are searched by the listing endpoints
	ListFields = []Field{FieldName, FieldDescription, FieldBrand}

	// SearchFields are searched by the dedicated search endpoint
	SearchFields = []Field{FieldName, FieldDescription, FieldBrand, FieldCategory}
)

func (f Field) value(p *models.Product) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldDescription:
		return p.Description
	case FieldBrand:
		return p.Brand
	case FieldCategory:
		return p.Category
	}
	return ""
}

// Params describes a composed listing query
type Params struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// FilterByCategory keeps products whose category or subcategory equals
// category exactly. "All" and "" return items unchanged.
func FilterByCategory(items []models.Product, category string) []models.Product {
	if category == "" || category == AllCategories {
		return items
	}

	filtered := make([]models.Product, 0)
	for i := range items {
		if items[i].Category == category || items[i].Subcategory == category {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// Search keeps products where any of fields contains q, ignoring case.
// A blank q returns items unchanged.
func Search(items []models.Product, q string, fields []Field) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return items
	}

	filtered := make([]models.Product, 0)
	for i := range items {
		if matches(&items[i], needle, fields) {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// SearchProducts is the dedicated search operation: it matches name,
// description, brand and category, and a blank q yields no products.
func SearchProducts(items []models.Product, q string) []models.Product {
	if strings.TrimSpace(q) == "" {
		return []models.Product{}
	}
	return Search(items, q, SearchFields)
}

func matches(p *models.Product, needle string, fields []Field) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.value(p)), needle) {
			return true
		}
	}
	return false
}

// Paginate returns the 1-indexed page of items. Out of range pages produce
// an empty product list inside a well-formed envelope.
func Paginate(items []models.Product, page, limit int) models.ProductPage {
	if limit <= 0 {
		limit = DefaultLimit
	}

	total := len(items)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	result := models.ProductPage{
		Products:   []models.Product{},
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
	if page < 1 || page > result.TotalPages {
		return result
	}

	start := (page - 1) * limit
	end := total
	if limit < total-start {
		end = start + limit
	}
	result.Products = items[start:end:end]
	return result
}

// Compose applies the category filter, then the text search, then
// pagination. Pagination therefore counts only the filtered products.
func Compose(items []models.Product, p Params) models.ProductPage {
	filtered := FilterByCategory(items, p.Category)
	filtered = Search(filtered, p.Search, ListFields)
	return Paginate(filtered, p.Page, p.Limit)
}
