package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/query"
	"github.com/SigNoz/storefront-go-app/internal/services"
)

// Options controls request parsing and throttling
type Options struct {
	DefaultLimit   int
	MaxLimit       int
	RateLimitRPS   float64
	RateLimitBurst int
	RateLimitTTL   time.Duration
}

// App holds application dependencies
type App struct {
	opts           Options
	metrics        *metrics.AppMetrics
	logger         *zap.Logger
	productService *services.ProductService
}

// NewApp creates a new application instance
func NewApp(opts Options, m *metrics.AppMetrics, logger *zap.Logger, ps *services.ProductService) *App {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = query.DefaultLimit
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	return &App{
		opts:           opts,
		metrics:        m,
		logger:         logger,
		productService: ps,
	}
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	chain := []mux.MiddlewareFunc{
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.RecoveryMiddleware(a.logger),
		middleware.MetricsMiddleware(a.metrics, a.logger),
	}
	if a.opts.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(a.opts.RateLimitRPS, a.opts.RateLimitBurst, a.opts.RateLimitTTL)
		chain = append(chain, limiter.Middleware(a.metrics))
	}
	r.Use(chain...)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", a.ListProductsHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/product/{id}", a.GetProductHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/categories", a.CategoriesHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/search", a.SearchHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/category/{category}", a.CategoryProductsHandler).Methods(http.MethodGet, http.MethodOptions)

	// Health
	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)

	// mux skips r.Use middleware for these two, so wrap them explicitly
	r.NotFoundHandler = withMiddleware(chain, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	}))
	r.MethodNotAllowedHandler = withMiddleware(chain, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}))
}

func withMiddleware(chain []mux.MiddlewareFunc, h http.Handler) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// HealthHandler handles GET /health
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Products: a.productService.Count()})
}

// ListProductsHandler handles GET /api/products
func (a *App) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := a.pagination(r)

	result := a.productService.ListProducts(r.Context(), query.Params{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	writeJSON(w, http.StatusOK, result)
}

// GetProductHandler handles GET /api/product/{id}
func (a *App) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := a.productService.GetProduct(r.Context(), id)
	if errors.Is(err, services.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		a.logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err),
			zap.String("request_id", middleware.RequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// CategoriesHandler handles GET /api/categories
func (a *App) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.productService.Categories())
}

// SearchHandler handles GET /api/search
func (a *App) SearchHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.productService.SearchProducts(r.Context(), r.URL.Query().Get("q")))
}

// CategoryProductsHandler handles GET /api/category/{category}
func (a *App) CategoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := a.pagination(r)

	result := a.productService.ListProducts(r.Context(), query.Params{
		Category: mux.Vars(r)["category"],
		Page:     page,
		Limit:    limit,
	})
	writeJSON(w, http.StatusOK, result)
}

// pagination reads page and limit. Non-numeric values fall back to the
// defaults; a numeric page below 1 is kept and produces an empty page.
func (a *App) pagination(r *http.Request) (page, limit int) {
	page = query.DefaultPage
	limit = a.opts.DefaultLimit

	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > a.opts.MaxLimit {
		limit = a.opts.MaxLimit
	}
	return page, limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
