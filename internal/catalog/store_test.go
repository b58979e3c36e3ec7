package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

type staticSource struct {
	products []models.Product
	err      error
	calls    int
}

func (s *staticSource) Products(context.Context) ([]models.Product, error) {
	s.calls++
	return s.products, s.err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadIndexesProducts(t *testing.T) {
	src := &staticSource{products: []models.Product{
		{ID: 10, Name: "A", Category: "Shoes", Subcategory: "Running"},
		{ID: 11, Name: "B", Category: "Electronics", Subcategory: "Audio"},
		{ID: 12, Name: "C", Category: "Shoes", Subcategory: "Tennis"},
	}}

	s := Load(context.Background(), src, zap.NewNop())

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 3, s.Len())

	p, ok := s.ByID(11)
	require.True(t, ok)
	assert.Equal(t, "B", p.Name)

	_, ok = s.ByID(99)
	assert.False(t, ok)

	cats := s.Categories()
	assert.Equal(t, []string{"Shoes", "Electronics"}, cats.Categories)
	assert.Equal(t, []string{"Running", "Audio", "Tennis"}, cats.Subcategories)
}

func TestLoadFailureYieldsEmptyCatalog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	src := &staticSource{err: errors.New("disk on fire")}

	s := Load(context.Background(), src, zap.New(core))

	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Products())
	assert.Empty(t, s.Categories().Categories)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "disk on fire")
}

func TestLoadDropsDuplicateIDs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &staticSource{products: []models.Product{
		{ID: 1, Name: "first"},
		{ID: 1, Name: "second"},
	}}

	s := Load(context.Background(), src, zap.New(core))

	assert.Equal(t, 1, s.Len())
	p, _ := s.ByID(1)
	assert.Equal(t, "first", p.Name)
	assert.Equal(t, 1, logs.Len())
}

func TestCategoriesReturnsCopy(t *testing.T) {
	s := NewSnapshot([]models.Product{{ID: 1, Category: "Shoes", Subcategory: "Running"}})

	cats := s.Categories()
	cats.Categories[0] = "changed"

	assert.Equal(t, []string{"Shoes"}, s.Categories().Categories)
}

func TestFileSourceJSON(t *testing.T) {
	path := writeFile(t, "products.json", `[
		{"id": 1, "name": "Runner", "brand": "Nike", "category": "Shoes", "subcategory": "Running",
		 "price": 4999, "originalPrice": 6999, "rating": 4.5, "reviews": 120, "stock": 3,
		 "features": ["Breathable", "Light"], "specifications": {"Material": "Mesh"}},
		{"id": 2, "name": "Socks", "price": 199, "stock": 0}
	]`)

	products, err := NewFileSource(path).Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, 4999.0, first.Price)
	require.NotNil(t, first.OriginalPrice)
	assert.Equal(t, 6999.0, *first.OriginalPrice)
	assert.Equal(t, 4.5, first.RatingOrDefault())
	assert.Equal(t, 120, first.ReviewsOrDefault())
	assert.Equal(t, []string{"Breathable", "Light"}, first.Features)
	assert.Equal(t, "Mesh", first.Specifications["Material"])

	assert.Nil(t, products[1].Rating)
	assert.Nil(t, products[1].OriginalPrice)
}

func TestFileSourceFillsMissingCollections(t *testing.T) {
	for name, content := range map[string]string{
		"products.json": `[{"id": 1, "name": "Socks", "price": 199, "features": null}]`,
		"products.yml":  "- id: 1\n  name: Socks\n  price: 199\n",
	} {
		t.Run(name, func(t *testing.T) {
			products, err := NewFileSource(writeFile(t, name, content)).Products(context.Background())
			require.NoError(t, err)
			require.Len(t, products, 1)

			data, err := json.Marshal(products[0])
			require.NoError(t, err)
			assert.Contains(t, string(data), `"features":[]`)
			assert.Contains(t, string(data), `"specifications":{}`)
		})
	}
}

func TestFileSourceYAML(t *testing.T) {
	path := writeFile(t, "products.yaml", `
- id: 5
  name: Headphones
  brand: Sony
  category: Electronics
  subcategory: Audio
  price: 2999.5
  stock: 4
  features:
    - Wireless
  specifications:
    Battery: 30h
`)

	products, err := NewFileSource(path).Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(5), products[0].ID)
	assert.Equal(t, 2999.5, products[0].Price)
	assert.Equal(t, "30h", products[0].Specifications["Battery"])
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFileSource("").Products(context.Background())
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Products(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	corrupt := writeFile(t, "products.json", `{"id": `)
	_, err = NewFileSource(corrupt).Products(context.Background())
	assert.Error(t, err)

	// A corrupt file still produces a servable catalog
	s := Load(context.Background(), NewFileSource(corrupt), zap.NewNop())
	assert.Equal(t, 0, s.Len())
}
