package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/api"
	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/logger"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/pkg/config"
)

func main() {
	// Load configuration
	cfg, envErr := config.LoadConfig()

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("Ignoring .env file", zap.Error(envErr))
	}

	ctx := context.Background()

	// Initialize OpenTelemetry metrics
	appMetrics, shutdownMetrics := initMetrics(ctx, cfg, log)
	defer shutdownMetrics()

	// Load the catalog once; it is read-only from here on
	src, closeSource := catalogSource(ctx, cfg, appMetrics, log)
	start := time.Now()
	snapshot := catalog.Load(ctx, src, log)
	appMetrics.RecordCatalogLoad(ctx, cfg.CatalogSource, snapshot.Len(), time.Since(start))
	closeSource()

	// Initialize app
	productService := services.NewProductService(snapshot, appMetrics, log)
	app := api.NewApp(api.Options{
		DefaultLimit:   cfg.DefaultPageLimit,
		MaxLimit:       cfg.MaxPageLimit,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		RateLimitTTL:   cfg.RateLimitTTL,
	}, appMetrics, log, productService)

	// Setup router
	router := mux.NewRouter()
	app.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GetAppPortInt()),
		Handler:      otelhttp.NewHandler(router, cfg.OTELServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting",
			zap.String("addr", server.Addr),
			zap.Int("products", snapshot.Len()),
			zap.String("catalog_source", cfg.CatalogSource),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// initMetrics exports through OTLP when enabled and falls back to a noop
// meter otherwise, or when the exporter cannot be configured
func initMetrics(ctx context.Context, cfg *config.Config, log *zap.Logger) (*metrics.AppMetrics, func()) {
	if cfg.MetricsEnabled {
		appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg, log)
		if err == nil {
			return appMetrics, func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down meter provider", zap.Error(err))
				}
			}
		}
		log.Error("Failed to initialize metrics, continuing without export", zap.Error(err))
	}

	appMetrics, err := metrics.NewAppMetrics(noop.NewMeterProvider().Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		log.Fatal("Failed to create metric instruments", zap.Error(err))
	}
	return appMetrics, func() {}
}

// catalogSource picks the configured product source. A database that cannot
// be reached is reported as an empty catalog, same as a missing file.
func catalogSource(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, log *zap.Logger) (catalog.Source, func()) {
	switch cfg.CatalogSource {
	case "mysql":
		database, err := db.NewDB(cfg.GetDSN(), cfg.OTELServiceName, log)
		if err != nil {
			return failedSource{err: err}, func() {}
		}

		schemaSQL, err := os.ReadFile(cfg.SchemaPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Info("No schema file, assuming database schema already exists", zap.String("path", cfg.SchemaPath))
		case err != nil:
			log.Warn("Could not read schema file", zap.String("path", cfg.SchemaPath), zap.Error(err))
		default:
			if err := database.InitSchema(ctx, string(schemaSQL)); err != nil {
				log.Warn("Could not initialize schema, assuming it already exists", zap.Error(err))
			}
		}

		return db.NewProductSource(database, m), func() { database.Close() }
	case "file":
		return catalog.NewFileSource(cfg.CatalogPath), func() {}
	default:
		return failedSource{err: fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)}, func() {}
	}
}

type failedSource struct {
	err error
}

func (s failedSource) Products(context.Context) ([]models.Product, error) {
	return nil, s.err
}
