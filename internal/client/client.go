// Package client is a typed HTTP client for the storefront API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/query"
)

// PageSize is the number of products requested per listing page
const PageSize = 20

const defaultTimeout = 10 * time.Second

// ErrProductNotFound is returned by Product when the API answers 404
var ErrProductNotFound = errors.New("product not found")

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the storefront API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:5000/api
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products returns one page of the catalog. An empty category or "All"
// lists every product.
func (c *Client) Products(ctx context.Context, page int, category string) (*models.ProductPage, error) {
	if category == "" || category == query.AllCategories {
		var out models.ProductPage
		if err := c.get(ctx, "/products", pageValues(page), &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	return c.ProductsByCategory(ctx, category, page)
}

// ProductsByCategory returns one page of products in category
func (c *Client) ProductsByCategory(ctx context.Context, category string, page int) (*models.ProductPage, error) {
	var out models.ProductPage
	if err := c.get(ctx, "/category/"+url.PathEscape(category), pageValues(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search returns every product matching q
func (c *Client) Search(ctx context.Context, q string) ([]models.Product, error) {
	out := []models.Product{}
	if err := c.get(ctx, "/search", url.Values{"q": {q}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product returns a single product. A 404 is reported as ErrProductNotFound.
func (c *Client) Product(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	err := c.get(ctx, "/product/"+strconv.FormatInt(id, 10), nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories returns the distinct categories and subcategories
func (c *Client) Categories(ctx context.Context) (*models.Categories, error) {
	var out models.Categories
	if err := c.get(ctx, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageValues(page int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(PageSize)},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var payload models.ErrorResponse
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
