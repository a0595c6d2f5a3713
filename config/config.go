package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"storefront-backend/internal/domain"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	// DB Config
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnLifetime time.Duration
	DBMaxConnIdleTime time.Duration
	QueryTimeout      time.Duration
	// HTTP
	AllowedOrigins string
	RateLimitRPS   float64
	RateLimitBurst int
	// Catalog policy
	ShowAllLocal     bool
	ImageReadyOnly   bool
	CatalogRulesFile string
	DefaultPageLimit int
	MaxPageLimit     int
	// Sitemap
	FrontendURL     string
	SitemapCacheTTL time.Duration
	// Images
	ImageRoot            string
	ImageURLPrefix       string
	ImageCDNURL          string
	ImagePlaceholder     string
	ImageRefreshInterval time.Duration
	ImageWatchDisabled   bool
	ImageWatchDebounce   time.Duration
	// Search
	MeiliURL       string
	MeiliAPIKey    string
	MeiliIndex     string
	SearchCacheTTL time.Duration
	// R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	UploadTimeout     time.Duration
}

// LoadConfig reads CONFIG_FILE or .env when present, then the environment.
func LoadConfig() (*Config, error) {
	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		}
	} else {
		// Production relies on real env vars; a missing .env is normal there.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnLifetime: getDurationEnv("DB_MAX_CONN_LIFETIME", time.Hour),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", 15*time.Minute),
		QueryTimeout:      getDurationEnv("QUERY_TIMEOUT", 5*time.Second),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		ShowAllLocal:     getBoolEnv("SHOW_ALL_LOCAL", false),
		ImageReadyOnly:   getBoolEnv("IMAGE_READY_ONLY", false),
		CatalogRulesFile: getEnv("CATALOG_RULES_FILE", ""),
		DefaultPageLimit: getIntEnv("DEFAULT_PAGE_LIMIT", 24),
		MaxPageLimit:     getIntEnv("MAX_PAGE_LIMIT", 100),

		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		SitemapCacheTTL: getDurationEnv("SITEMAP_CACHE_TTL", time.Hour),

		ImageRoot:            getEnv("IMAGE_ROOT", "./images"),
		ImageURLPrefix:       getEnv("IMAGE_URL_PREFIX", "/images"),
		ImageCDNURL:          getEnv("IMAGE_CDN_URL", ""),
		ImagePlaceholder:     getEnv("IMAGE_PLACEHOLDER_URL", domain.PlaceholderImage),
		ImageRefreshInterval: getDurationEnv("IMAGE_REFRESH_INTERVAL", 10*time.Minute),
		ImageWatchDisabled:   getBoolEnv("IMAGE_WATCH_DISABLED", false),
		ImageWatchDebounce:   getDurationEnv("IMAGE_WATCH_DEBOUNCE", 2*time.Second),

		MeiliURL:       getEnv("MEILI_URL", ""),
		MeiliAPIKey:    getEnv("MEILI_API_KEY", ""),
		MeiliIndex:     getEnv("MEILI_INDEX", "catalog"),
		SearchCacheTTL: getDurationEnv("SEARCH_CACHE_TTL", 5*time.Minute),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		UploadTimeout:     getDurationEnv("UPLOAD_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values every entry point needs. The database DSN is
// checked separately by RequireDB since some commands never connect.
func (c *Config) Validate() error {
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.DefaultPageLimit <= 0 || c.MaxPageLimit < c.DefaultPageLimit {
		return fmt.Errorf("invalid page limits: default %d, max %d", c.DefaultPageLimit, c.MaxPageLimit)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

func (c *Config) RequireDB() error {
	if c.DBUrl == "" {
		return errors.New("DB_DSN environment variable is required")
	}
	return nil
}

func (c *Config) RequireR2() error {
	if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2AccessKeySecret == "" || c.R2BucketName == "" {
		return errors.New("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are required")
	}
	return nil
}

// SearchEnabled reports whether a Meilisearch instance is configured.
func (c *Config) SearchEnabled() bool {
	return c.MeiliURL != ""
}
