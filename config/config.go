package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings read from the environment
type Config struct {
	Port string
	Env  string

	// Google service account, JSON takes precedence over the file path
	CredentialsPath string
	CredentialsJSON string

	SheetName    string
	ImageFolder  string
	OwnerEmail   string
	StrictSchema bool

	RemoteTimeout time.Duration

	PublicSheetID   string
	PublicExportURL string
	PublicCacheTTL  time.Duration
	PublicCacheSize int

	DatabaseURL string
	ChromePath  string
}

// Load reads the configuration from environment variables, applies
// defaults for unset values and validates the result
func Load() (*Config, error) {
	cfg := &Config{
		Port:            strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		Env:             getEnv("ENV", "development"),
		CredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		CredentialsJSON: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"),
		SheetName:       getEnv("SHEET_NAME", "fabric_library"),
		ImageFolder:     os.Getenv("IMAGE_FOLDER"),
		OwnerEmail:      os.Getenv("OWNER_EMAIL"),
		PublicSheetID:   os.Getenv("PUBLIC_SHEET_ID"),
		PublicExportURL: os.Getenv("PUBLIC_EXPORT_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ChromePath:      os.Getenv("CHROME_PATH"),
	}

	var err error
	if cfg.StrictSchema, err = getBool("STRICT_SCHEMA", false); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout, err = getDuration("REMOTE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.PublicCacheTTL, err = getDuration("PUBLIC_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.PublicCacheSize, err = getInt("PUBLIC_CACHE_SIZE", 16); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and required combinations
func (c *Config) Validate() error {
	if c.CredentialsPath == "" && c.CredentialsJSON == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON must be set")
	}
	if strings.TrimSpace(c.SheetName) == "" {
		return fmt.Errorf("SHEET_NAME must not be blank")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout)
	}
	if c.PublicCacheSize < 0 {
		return fmt.Errorf("PUBLIC_CACHE_SIZE must not be negative, got %d", c.PublicCacheSize)
	}
	if c.PublicExportURL != "" && strings.Count(c.PublicExportURL, "%s") != 1 {
		return fmt.Errorf("PUBLIC_EXPORT_URL must contain exactly one %%s for the sheet ID")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s=%q: %w", key, v, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s=%q: %w", key, v, err)
	}
	return i, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s=%q: %w", key, v, err)
	}
	return d, nil
}
