// Package config loads configuration from defaults, an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tables names the DynamoDB tables and their indexes
type Tables struct {
	Articles  string `yaml:"articles"`
	Bookmarks string `yaml:"bookmarks"`
	Sessions  string `yaml:"sessions"`

	SessionIndex             string `yaml:"session_index"`
	PathnameIndex            string `yaml:"pathname_index"`
	StatusPublishedDateIndex string `yaml:"status_published_date_index"`
	StatusUpdatedDateIndex   string `yaml:"status_updated_date_index"`
	GSI1PublishedDateIndex   string `yaml:"gsi1_published_date_index"`
	GSI1UpdatedDateIndex     string `yaml:"gsi1_updated_date_index"`
}

// Translation configures the chat completions endpoint
type Translation struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Config holds all application configuration
type Config struct {
	Environment   string `yaml:"environment"`
	ServerAddress string `yaml:"server_address"`
	LogLevel      string `yaml:"log_level"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	Tables           Tables `yaml:"tables"`
	EventBusName     string `yaml:"event_bus_name"`

	// Object storage
	ImageBucket        string `yaml:"image_bucket"`
	PublicAssetBaseURL string `yaml:"public_asset_base_url"`

	// AdminUserIDs are the identities allowed to call protected actions
	AdminUserIDs []string `yaml:"admin_user_ids"`

	Translation Translation `yaml:"translation"`

	// Feature flags
	EnableMetrics    bool   `yaml:"enable_metrics"`
	EnableTracing    bool   `yaml:"enable_tracing"`
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Environment:   "development",
		ServerAddress: ":8080",
		LogLevel:      "info",
		AWSRegion:     "us-east-1",
		Tables: Tables{
			Articles:                 "archive-articles",
			Bookmarks:                "archive-bookmarks",
			Sessions:                 "archive-sessions",
			SessionIndex:             "GSI1",
			PathnameIndex:            "pathname-index",
			StatusPublishedDateIndex: "status-published_date-index",
			StatusUpdatedDateIndex:   "status-updated_date-index",
			GSI1PublishedDateIndex:   "GSI1-published_date-index",
			GSI1UpdatedDateIndex:     "GSI1-updated_date-index",
		},
		Translation: Translation{
			APIURL: "https://api.openai.com/v1",
			Model:  "gpt-4o-mini",
		},
		MetricsNamespace: "Archive",
	}
}

// LoadConfig applies, in increasing priority, the defaults, the YAML file named by
// CONFIG_FILE and the environment variables, then validates the result.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", cfg.DynamoDBEndpoint)
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)

	t := &cfg.Tables
	t.Articles = getEnv("ARTICLE_TABLE", t.Articles)
	t.Bookmarks = getEnv("BOOKMARK_TABLE", t.Bookmarks)
	t.Sessions = getEnv("SESSION_TABLE", t.Sessions)
	t.SessionIndex = getEnv("SESSION_INDEX", t.SessionIndex)
	t.PathnameIndex = getEnv("PATHNAME_INDEX", t.PathnameIndex)
	t.StatusPublishedDateIndex = getEnv("STATUS_PUBLISHED_DATE_INDEX", t.StatusPublishedDateIndex)
	t.StatusUpdatedDateIndex = getEnv("STATUS_UPDATED_DATE_INDEX", t.StatusUpdatedDateIndex)
	t.GSI1PublishedDateIndex = getEnv("GSI1_PUBLISHED_DATE_INDEX", t.GSI1PublishedDateIndex)
	t.GSI1UpdatedDateIndex = getEnv("GSI1_UPDATED_DATE_INDEX", t.GSI1UpdatedDateIndex)

	cfg.ImageBucket = getEnv("IMAGE_BUCKET", cfg.ImageBucket)
	cfg.PublicAssetBaseURL = getEnv("PUBLIC_ASSET_BASE_URL", cfg.PublicAssetBaseURL)
	cfg.AdminUserIDs = getEnvList("ADMIN_USER_IDS", cfg.AdminUserIDs)

	cfg.Translation.APIURL = getEnv("TRANSLATE_API_URL", cfg.Translation.APIURL)
	cfg.Translation.APIKey = getEnv("TRANSLATE_API_KEY", cfg.Translation.APIKey)
	cfg.Translation.Model = getEnv("TRANSLATE_MODEL", cfg.Translation.Model)

	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.MetricsNamespace = getEnv("METRICS_NAMESPACE", cfg.MetricsNamespace)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Tables.Articles == "" || c.Tables.Bookmarks == "" || c.Tables.Sessions == "" {
		return fmt.Errorf("ARTICLE_TABLE, BOOKMARK_TABLE and SESSION_TABLE must not be empty")
	}
	if c.IsProduction() {
		if len(c.AdminUserIDs) == 0 {
			return fmt.Errorf("ADMIN_USER_IDS is required in production")
		}
		if c.DynamoDBEndpoint != "" {
			return fmt.Errorf("DYNAMODB_ENDPOINT must not be set in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return value == "yes"
	}
	return b
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
