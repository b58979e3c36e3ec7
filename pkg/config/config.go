package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration from environment variables
type Config struct {
	// Application
	AppPort  string
	AppEnv   string
	LogLevel string

	// Catalog
	CatalogSource string // "file" or "mysql"
	CatalogPath   string
	SchemaPath    string

	// Database (CatalogSource=mysql)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// API
	DefaultPageLimit int
	MaxPageLimit     int
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitTTL     time.Duration

	// OpenTelemetry
	MetricsEnabled            bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPHeaders   string // For SigNoz Cloud: signoz-ingestion-key=<key>
	OTELExporterOTLPInsecure  bool   // true for http://, false for https://
	OTELServiceName           string
	OTELServiceVersion        string
	OTELDeploymentEnvironment string

	// Storefront client
	APIURL    string
	CartStore string // "file" or "redis"
	CartPath  string
	RedisURL  string
	CartKey   string
}

// LoadConfig loads configuration from an optional .env file and environment
// variables with defaults. The returned error reports a .env file that exists
// but could not be parsed; the config is usable either way.
func LoadConfig() (*Config, error) {
	var envErr error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		envErr = fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		AppPort:  getEnv("APP_PORT", "5000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CatalogSource: getEnv("CATALOG_SOURCE", "file"),
		CatalogPath:   getEnv("CATALOG_PATH", "products.json"),
		SchemaPath:    getEnv("SCHEMA_PATH", "schema.sql"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "storefront"),

		DefaultPageLimit: getEnvInt("DEFAULT_PAGE_LIMIT", 20),
		MaxPageLimit:     getEnvInt("MAX_PAGE_LIMIT", 100),
		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 100),
		RateLimitTTL:     getEnvDuration("RATE_LIMIT_TTL", 5*time.Minute),

		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPHeaders:   getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OTELExporterOTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "storefront-api"),
		OTELServiceVersion:        getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		OTELDeploymentEnvironment: getEnv("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),

		APIURL:    getEnv("STOREFRONT_API_URL", "http://localhost:5000/api"),
		CartStore: getEnv("CART_STORE", "file"),
		CartPath:  getEnv("CART_PATH", defaultCartPath()),
		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartKey:   getEnv("CART_KEY", "storefront:cart"),
	}, envErr
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// GetAppPortInt returns the application port as an integer
func (c *Config) GetAppPortInt() int {
	port, err := strconv.Atoi(c.AppPort)
	if err != nil {
		return 5000
	}
	return port
}

func defaultCartPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".storefront", "cart.json")
	}
	return filepath.Join(home, ".storefront", "cart.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvInt ignores values that are not positive integers
func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings such as "90s" or "10m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
