package models

import "math"

// DefaultRating is shown for products that have not been rated yet
const DefaultRating = 4.0

// Product represents a product in the catalog
type Product struct {
	ID             int64             `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Brand          string            `json:"brand" yaml:"brand"`
	Category       string            `json:"category" yaml:"category"`
	Subcategory    string            `json:"subcategory" yaml:"subcategory"`
	Description    string            `json:"description" yaml:"description"`
	Price          float64           `json:"price" yaml:"price"`
	OriginalPrice  *float64          `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Image          string            `json:"image" yaml:"image"`
	Rating         *float64          `json:"rating,omitempty" yaml:"rating,omitempty"`
	Reviews        *int              `json:"reviews,omitempty" yaml:"reviews,omitempty"`
	Stock          int               `json:"stock" yaml:"stock"`
	Features       []string          `json:"features" yaml:"features"`
	Specifications map[string]string `json:"specifications" yaml:"specifications"`
}

// RatingOrDefault returns the product rating, or DefaultRating when unrated
func (p Product) RatingOrDefault() float64 {
	if p.Rating == nil {
		return DefaultRating
	}
	return *p.Rating
}

// ReviewsOrDefault returns the review count, or 0 when absent
func (p Product) ReviewsOrDefault() int {
	if p.Reviews == nil {
		return 0
	}
	return *p.Reviews
}

// DiscountPercent returns the rounded discount against the original price
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= 0 {
		return 0
	}
	orig := *p.OriginalPrice
	return int(math.Round((orig - p.Price) / orig * 100))
}

// InStock reports whether the product can be added to a cart
func (p Product) InStock() bool {
	return p.Stock > 0
}

// CartEntry is one cart line: the product snapshot plus its quantity.
// It serializes as the product's fields with an extra "quantity" field.
type CartEntry struct {
	Product
	Quantity int `json:"quantity"`
}

// ProductPage is one page of a filtered product listing
type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// Categories lists the distinct category and subcategory values in the catalog
type Categories struct {
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
}

// ErrorResponse is the body of every API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
}
