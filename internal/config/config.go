package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Comments CommentsConfig
	Ratings  RatingsConfig
	Mail     MailConfig
	Spam     SpamConfig
	Log      LogConfig
	Admin    AdminConfig

	// LoginURL is where the gatekeeper sends unauthenticated submitters.
	LoginURL string
	// Debug makes notification mail fail silently.
	Debug bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port          string
	SiteURL       string
	SessionSecret string
	Env           string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	URL    string
}

// CommentsConfig holds comment submission settings
type CommentsConfig struct {
	AccountRequired    bool
	DefaultApproved    bool
	NotificationEmails []string
}

// RatingsConfig holds rating submission settings
type RatingsConfig struct {
	AccountRequired bool
	Range           []int
}

// MailConfig holds SMTP settings
type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether every SMTP setting is present.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != "" && m.From != ""
}

// SpamConfig holds spam filter settings
type SpamConfig struct {
	AkismetAPIKey string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// AdminConfig seeds the first staff account
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	ratingRange, err := parseRange(getEnv("RATINGS_RANGE", "1,2,3,4,5"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			SiteURL:       strings.TrimSuffix(getEnv("SITE_URL", "http://localhost:8080"), "/"),
			SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
			Env:           getEnv("ENV", "production"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			URL:    getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=myblog port=5432 sslmode=disable"),
		},
		Comments: CommentsConfig{
			AccountRequired:    getBoolEnv("COMMENTS_ACCOUNT_REQUIRED", false),
			DefaultApproved:    getBoolEnv("COMMENTS_DEFAULT_APPROVED", true),
			NotificationEmails: splitList(os.Getenv("COMMENTS_NOTIFICATION_EMAILS")),
		},
		Ratings: RatingsConfig{
			AccountRequired: getBoolEnv("RATINGS_ACCOUNT_REQUIRED", false),
			Range:           ratingRange,
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("DEFAULT_FROM_EMAIL"),
		},
		Spam: SpamConfig{
			AkismetAPIKey: os.Getenv("AKISMET_API_KEY"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		LoginURL: getEnv("LOGIN_URL", "/accounts/login/"),
		Debug:    getBoolEnv("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if len(c.Ratings.Range) == 0 {
		return fmt.Errorf("RATINGS_RANGE must contain at least one value")
	}
	if c.LoginURL == "" {
		return fmt.Errorf("LOGIN_URL is required")
	}
	return nil
}

// AccountRequired returns the login-required flag for a gated feature
// ("comment" or "rating").
func (c *Config) AccountRequired(feature string) bool {
	switch feature {
	case "comment":
		return c.Comments.AccountRequired
	case "rating":
		return c.Ratings.AccountRequired
	}
	return false
}

func parseRange(s string) ([]int, error) {
	var values []int
	for _, part := range splitList(s) {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid RATINGS_RANGE value %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// splitList splits a comma separated list, trimming items and dropping empties.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
