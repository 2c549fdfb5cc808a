// Package config loads runtime settings from an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

// Config holds every setting the binaries read.
type Config struct {
	APIKey           string
	ModelName        string
	ModelTemperature float32
	ModelMaxRetries  int
	FallbackEnabled  bool

	StorageBackend string
	SQLitePath     string
	BQProject      string
	BQDataset      string
	GCSBucket      string

	DefaultCustomer domain.Customer

	Port        string
	APIToken    string
	LogLevel    string
	LogFormat   string
	NotionToken string
	NotionDBID  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODEL_NAME", "gemini-2.0-flash")
	v.SetDefault("MODEL_TEMPERATURE", 0.3)
	v.SetDefault("MODEL_MAX_RETRIES", 2)
	v.SetDefault("FALLBACK_ENABLED", true)
	v.SetDefault("STORAGE_BACKEND", BackendSQLite)
	v.SetDefault("SQLITE_PATH", "sms.db")
	v.SetDefault("BQ_PROJECT", "")
	v.SetDefault("BQ_DATASET", "sms")
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("DEFAULT_CUSTOMER_ID", "GUEST")
	v.SetDefault("DEFAULT_CUSTOMER_NAME", "Guest Customer")
	v.SetDefault("DEFAULT_CUSTOMER_PHONE", "Unknown-GUEST")
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_KEY_HEADER_TOKEN", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("NOTION_TOKEN", "")
	v.SetDefault("NOTION_DB_ID", "")
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("API_KEY", "")
}

// Load reads envFile when it exists, then overlays the process environment.
// An empty envFile means ".env" in the working directory.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile == "" {
		envFile = ".env"
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: reading %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		APIKey:           firstNonEmpty(v.GetString("GOOGLE_API_KEY"), v.GetString("API_KEY")),
		ModelName:        v.GetString("MODEL_NAME"),
		ModelTemperature: float32(v.GetFloat64("MODEL_TEMPERATURE")),
		ModelMaxRetries:  v.GetInt("MODEL_MAX_RETRIES"),
		FallbackEnabled:  v.GetBool("FALLBACK_ENABLED"),
		StorageBackend:   strings.ToLower(v.GetString("STORAGE_BACKEND")),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		BQProject:        v.GetString("BQ_PROJECT"),
		BQDataset:        v.GetString("BQ_DATASET"),
		GCSBucket:        v.GetString("GCS_BUCKET"),
		DefaultCustomer: domain.Customer{
			ID:    v.GetString("DEFAULT_CUSTOMER_ID"),
			Name:  v.GetString("DEFAULT_CUSTOMER_NAME"),
			Phone: v.GetString("DEFAULT_CUSTOMER_PHONE"),
		},
		Port:        v.GetString("PORT"),
		APIToken:    v.GetString("API_KEY_HEADER_TOKEN"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		NotionToken: v.GetString("NOTION_TOKEN"),
		NotionDBID:  v.GetString("NOTION_DB_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at first use.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for the sqlite backend")
		}
	case BackendBigQuery:
		if c.BQProject == "" || c.BQDataset == "" {
			return fmt.Errorf("config: BQ_PROJECT and BQ_DATASET are required for the bigquery backend")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.DefaultCustomer.ID == "" {
		return fmt.Errorf("config: DEFAULT_CUSTOMER_ID must not be empty")
	}
	if c.ModelMaxRetries < 0 {
		return fmt.Errorf("config: MODEL_MAX_RETRIES must be >= 0")
	}
	return nil
}

// ModelConfigured reports whether a model API key is available.
func (c *Config) ModelConfigured() bool {
	return c.APIKey != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
