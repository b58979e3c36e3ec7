package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/services"
)

func newTestRouter(t *testing.T, products []models.Product, opts Options) *mux.Router {
	t.Helper()
	m, err := metrics.NewAppMetrics(noop.NewMeterProvider().Meter("test"), "test")
	require.NoError(t, err)

	logger := zap.NewNop()
	svc := services.NewProductService(catalog.NewSnapshot(products), m, logger)

	r := mux.NewRouter()
	NewApp(opts, m, logger, svc).SetupRoutes(r)
	return r
}

func shoes(n int) []models.Product {
	items := make([]models.Product, n)
	for i := range items {
		items[i] = models.Product{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("Shoe %d", i+1),
			Brand:       "Acme",
			Category:    "Shoes",
			Subcategory: "Running",
			Description: "A running shoe",
			Price:       float64(1000 + i),
			Stock:       5,
		}
	}
	return items
}

func mixedCatalog() []models.Product {
	return append(shoes(3),
		models.Product{ID: 100, Name: "Galaxy Phone", Brand: "Samsung", Category: "Electronics", Subcategory: "Mobiles", Description: "AMOLED"},
		models.Product{ID: 101, Name: "Studio Headphones", Brand: "Sony", Category: "Electronics", Subcategory: "Audio", Description: "Wireless"},
	)
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) models.ProductPage {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page models.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestListProductsPagination(t *testing.T) {
	r := newTestRouter(t, shoes(25), Options{})

	first := decodePage(t, get(t, r, "/api/products?page=1&limit=20"))
	assert.Len(t, first.Products, 20)
	assert.Equal(t, 25, first.Total)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 2, first.TotalPages)

	second := decodePage(t, get(t, r, "/api/products?page=2&limit=20"))
	require.Len(t, second.Products, 5)
	assert.Equal(t, int64(21), second.Products[0].ID)
	assert.Equal(t, int64(25), second.Products[4].ID)
}

func TestListProductsDefaults(t *testing.T) {
	r := newTestRouter(t, shoes(25), Options{})

	for _, target := range []string{
		"/api/products",
		"/api/products?page=abc&limit=xyz",
		"/api/products?limit=0",
		"/api/products?limit=-5",
	} {
		page := decodePage(t, get(t, r, target))
		assert.Equal(t, 1, page.Page, target)
		assert.Len(t, page.Products, 20, target)
		assert.Equal(t, 2, page.TotalPages, target)
	}
}

func TestListProductsOutOfRangePage(t *testing.T) {
	r := newTestRouter(t, shoes(5), Options{})

	for _, target := range []string{"/api/products?page=0", "/api/products?page=9"} {
		rec := get(t, r, target)
		page := decodePage(t, rec)
		assert.Empty(t, page.Products)
		assert.Equal(t, 5, page.Total)
		assert.Contains(t, rec.Body.String(), `"products":[]`)
	}
}

func TestListProductsLimitCap(t *testing.T) {
	r := newTestRouter(t, shoes(30), Options{DefaultLimit: 5, MaxLimit: 10})

	assert.Len(t, decodePage(t, get(t, r, "/api/products")).Products, 5)
	assert.Len(t, decodePage(t, get(t, r, "/api/products?limit=500")).Products, 10)
}

func TestListProductsCategoryAndSearch(t *testing.T) {
	r := newTestRouter(t, mixedCatalog(), Options{})

	page := decodePage(t, get(t, r, "/api/products?category=Electronics"))
	assert.Equal(t, 2, page.Total)

	page = decodePage(t, get(t, r, "/api/products?category=All"))
	assert.Equal(t, 5, page.Total)

	page = decodePage(t, get(t, r, "/api/products?category=Electronics&search=SONY"))
	require.Equal(t, 1, page.Total)
	assert.Equal(t, int64(101), page.Products[0].ID)

	page = decodePage(t, get(t, r, "/api/products?search=electronics"))
	assert.Equal(t, 0, page.Total, "listing search does not match category")

	page = decodePage(t, get(t, r, "/api/products?category=Garden"))
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

func TestGetProduct(t *testing.T) {
	r := newTestRouter(t, mixedCatalog(), Options{})

	rec := get(t, r, "/api/product/100")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Galaxy Phone", p.Name)

	for _, target := range []string{"/api/product/999", "/api/product/abc"} {
		rec = get(t, r, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
	}
}

func TestCategories(t *testing.T) {
	r := newTestRouter(t, mixedCatalog(), Options{})

	rec := get(t, r, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var cats models.Categories
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.ElementsMatch(t, []string{"Shoes", "Electronics"}, cats.Categories)
	assert.ElementsMatch(t, []string{"Running", "Mobiles", "Audio"}, cats.Subcategories)
}

func TestSearch(t *testing.T) {
	r := newTestRouter(t, mixedCatalog(), Options{})

	rec := get(t, r, "/api/search?q=electronics")
	require.Equal(t, http.StatusOK, rec.Code)
	var results []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 2)

	for _, target := range []string{"/api/search", "/api/search?q=", "/api/search?q=%20%20"} {
		rec = get(t, r, target)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), target)
	}
}

func TestCategoryProducts(t *testing.T) {
	r := newTestRouter(t, append(shoes(25), mixedCatalog()[3:]...), Options{})

	page := decodePage(t, get(t, r, "/api/category/Shoes?page=2&limit=20"))
	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Products, 5)

	page = decodePage(t, get(t, r, "/api/category/Audio"))
	assert.Equal(t, 1, page.Total)

	page = decodePage(t, get(t, r, "/api/category/Nothing"))
	assert.Empty(t, page.Products)
}

func TestEmptyCatalogServesEmptyResults(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	page := decodePage(t, get(t, r, "/api/products"))
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.Total)

	rec := get(t, r, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","products":0}`, rec.Body.String())
}

func TestRateLimitedRouter(t *testing.T) {
	r := newTestRouter(t, shoes(1), Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, get(t, r, "/api/products").Code)
	rec := get(t, r, "/api/products")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, rec.Body.String())
}

func TestUnmatchedRequestsGoThroughMiddleware(t *testing.T) {
	m, err := metrics.NewAppMetrics(noop.NewMeterProvider().Meter("test"), "test")
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := mux.NewRouter()
	NewApp(Options{}, m, logger, services.NewProductService(catalog.NewSnapshot(shoes(1)), m, logger)).SetupRoutes(r)

	rec := get(t, r, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	entries := logs.FilterMessage("http_request").AllUntimed()
	require.Len(t, entries, 2)
	assert.EqualValues(t, http.StatusNotFound, entries[0].ContextMap()["status"])
	assert.EqualValues(t, http.StatusMethodNotAllowed, entries[1].ContextMap()["status"])
}
