package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/pkg/config"
)

// exportInterval is how often the periodic reader pushes metrics
const exportInterval = 10 * time.Second

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	RateLimited         metric.Int64Counter

	// Database Metrics
	DBQueriesTotal  metric.Int64Counter
	DBQueryDuration metric.Float64Histogram

	// Catalog Metrics
	CatalogProducts     metric.Int64Gauge
	CatalogLoadDuration metric.Float64Histogram
	ProductsViewed      metric.Int64Counter
	ProductsNotFound    metric.Int64Counter
	ProductSearches     metric.Int64Counter
	ProductListings     metric.Int64Counter

	// Service name for adding to all metrics
	serviceName string
}

// InitMetrics sets up the OTLP/HTTP exporter and the global meter provider
func InitMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	// Explicit attributes take precedence over OTEL_RESOURCE_ATTRIBUTES
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	// WithEndpoint expects host:port without a scheme
	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.OTELExporterOTLPHeaders != "" {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTELExporterOTLPHeaders)))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(meterProvider)

	logger.Info("Metrics exporter configured",
		zap.String("endpoint", cfg.OTELExporterOTLPEndpoint),
		zap.Bool("insecure", cfg.OTELExporterOTLPInsecure),
		zap.Duration("interval", exportInterval),
		zap.String("service", cfg.OTELServiceName),
	)

	appMetrics, err := NewAppMetrics(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return appMetrics, meterProvider, nil
}

// NewAppMetrics creates every instrument from meter
func NewAppMetrics(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: serviceName}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	if m.RateLimited, err = meter.Int64Counter(
		"http.server.rate_limited.count",
		metric.WithDescription("Requests rejected by the rate limiter"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limited counter: %w", err)
	}

	if m.DBQueriesTotal, err = meter.Int64Counter(
		"db.client.queries.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create db queries counter: %w", err)
	}

	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.client.queries.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}

	if m.CatalogProducts, err = meter.Int64Gauge(
		"catalog_products",
		metric.WithDescription("Number of products in the loaded catalog"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create catalog products gauge: %w", err)
	}

	if m.CatalogLoadDuration, err = meter.Float64Histogram(
		"catalog_load_duration",
		metric.WithDescription("Time taken to load the product catalog in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create catalog load histogram: %w", err)
	}

	if m.ProductsViewed, err = meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product detail views"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}

	if m.ProductsNotFound, err = meter.Int64Counter(
		"product_lookups_not_found_total",
		metric.WithDescription("Product lookups for unknown ids"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create products not found counter: %w", err)
	}

	if m.ProductSearches, err = meter.Int64Counter(
		"product_searches_total",
		metric.WithDescription("Total number of product searches"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create product searches counter: %w", err)
	}

	if m.ProductListings, err = meter.Int64Counter(
		"product_listings_total",
		metric.WithDescription("Total number of product listing pages served"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create product listings counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordDBQuery records database query metrics including the SQL statement
func (m *AppMetrics) RecordDBQuery(ctx context.Context, operation, table, statement string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	attrs := m.WithServiceName([]attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.statement", statement),
		attribute.String("db.system", "mysql"),
		attribute.String("status", status),
	})

	m.DBQueriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.DBQueryDuration.Record(ctx, float64(duration), metric.WithAttributes(attrs...))
}

// RecordCatalogLoad records the size of a freshly loaded catalog
func (m *AppMetrics) RecordCatalogLoad(ctx context.Context, source string, products int, duration time.Duration) {
	attrs := m.WithServiceName([]attribute.KeyValue{attribute.String("catalog.source", source)})
	m.CatalogProducts.Record(ctx, int64(products), metric.WithAttributes(attrs...))
	m.CatalogLoadDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	for _, pair := range strings.Split(headerStr, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
