package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"3000"`

	// Database configuration
	DBType            string `envconfig:"DB_TYPE" default:"sqlite"` // sqlite, mysql, mariadb, postgres, sqlserver
	DBHost            string `envconfig:"DB_HOST" default:"localhost"`
	DBPort            string `envconfig:"DB_PORT" default:"3306"`
	DBDatabase        string `envconfig:"DB_DATABASE" required:"true"` // file path for sqlite
	DBUser            string `envconfig:"DB_USER"`
	DBPassword        string `envconfig:"DB_PASSWORD"`
	DBConnectionLimit int    `envconfig:"DB_CONNECTION_LIMIT" default:"5"`

	// Site configuration
	SiteURL           string `envconfig:"SITE_URL" required:"true"`
	SiteLanguage      string `envconfig:"SITE_LANGUAGE" default:"en"`
	AdminAPIKey       string `envconfig:"ADMIN_API_KEY"`
	PaginationLimit   int    `envconfig:"PAGINATION_LIMIT" default:"10"`
	GalleryPagination int    `envconfig:"GALLERY_PAGINATION" default:"12"`
	SearchMinLength   int    `envconfig:"SEARCH_MIN_LENGTH" default:"3"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Expiry sweep schedule, robfig/cron syntax
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"@hourly"`
	// Port of the cron process /metrics listener; empty disables it
	CronMetricsPort string `envconfig:"CRON_METRICS_PORT" default:"9465"`
}

// Load loads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}

	c.DBType = strings.ToLower(c.DBType)
	switch c.DBType {
	case "sqlite", "mysql", "mariadb", "postgres", "postgresql", "sqlserver", "mssql":
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", c.DBType)
	}

	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITE_URL must be an absolute URL, got %q", c.SiteURL)
	}
	if !strings.HasSuffix(c.SiteURL, "/") {
		c.SiteURL += "/"
	}

	if c.DBConnectionLimit < 1 {
		return fmt.Errorf("DB_CONNECTION_LIMIT must be positive")
	}
	if c.PaginationLimit < 1 || c.GalleryPagination < 1 {
		return fmt.Errorf("pagination limits must be positive")
	}
	return nil
}
