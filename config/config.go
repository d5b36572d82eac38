// Package config loads configuration for the offline store from environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environment constants.
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// Config provides configuration for the offline cache and sync queue.
type Config struct {
	// AppName is used for the env var prefix and the database filename.
	AppName string `mapstructure:"appname"`

	// Environment: development, production, or test.
	Environment string `mapstructure:"environment"`

	// Logging configuration.
	LogLevel       string `mapstructure:"loglevel"`
	LogsDirectory  string `mapstructure:"logsdirectory"`
	LogsMaxSizeMB  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeDays int    `mapstructure:"logsmaxageindays"`

	// Data and database configuration.
	DataDirectory    string `mapstructure:"datadirectory"`
	DatabaseFilename string `mapstructure:"databasefilename"`
	DatabasePath     string `mapstructure:"-"` // Resolved path, not from env

	// Per-family cache limits.
	MaxResponsesPerCategory int `mapstructure:"maxresponsespercategory"`
	MaxContentItems         int `mapstructure:"maxcontentitems"`
	MaxPlans                int `mapstructure:"maxplans"`
	MaxFaqs                 int `mapstructure:"maxfaqs"`

	// MaxCacheBytes is the budget reported by usage statistics.
	MaxCacheBytes int64 `mapstructure:"maxcachebytes"`

	// Cleanup retention. Zero values fall back to the store defaults.
	ResponseRetentionDays  int `mapstructure:"responseretentiondays"`
	MinAccessCount         int `mapstructure:"minaccesscount"`
	UnsyncedRetentionDays  int `mapstructure:"unsyncedretentiondays"`
	CleanupIntervalMinutes int `mapstructure:"cleanupintervalminutes"`

	// Internal: the env var prefix (derived from AppName).
	envPrefix string
}

// Load creates a new Config for the given app name. It reads from
// environment variables prefixed with the uppercase app name.
// Example: Load("guruai") reads GURUAI_ENV, GURUAI_DATA_DIR, etc.
func Load(appName string) (*Config, error) {
	v := viper.New()

	appName = strings.ToLower(strings.TrimSpace(appName))
	if appName == "" {
		appName = "guruai"
	}
	prefix := strings.ToUpper(appName)

	// Read .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	setDefaults(v, appName)

	v.SetEnvPrefix(prefix)
	bindEnvVars(v, prefix)

	cfg := &Config{envPrefix: prefix}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.DatabasePath = cfg.resolveDatabasePath()
	cfg.ensureDirectories()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, appName string) {
	v.SetDefault("appname", appName)
	v.SetDefault("environment", Production)

	v.SetDefault("loglevel", "error")
	v.SetDefault("logsdirectory", "storage/logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)

	v.SetDefault("datadirectory", "storage")
	v.SetDefault("databasefilename", appName+".db")

	v.SetDefault("maxresponsespercategory", 10)
	v.SetDefault("maxcontentitems", 50)
	v.SetDefault("maxplans", 20)
	v.SetDefault("maxfaqs", 100)
	v.SetDefault("maxcachebytes", int64(50*1024*1024))

	v.SetDefault("responseretentiondays", 0)
	v.SetDefault("minaccesscount", 0)
	v.SetDefault("unsyncedretentiondays", 0)
	v.SetDefault("cleanupintervalminutes", 0)
}

func bindEnvVars(v *viper.Viper, prefix string) {
	v.BindEnv("environment", prefix+"_ENV")
	v.BindEnv("loglevel", prefix+"_LOG_LEVEL")
	v.BindEnv("logsdirectory", prefix+"_LOGS_DIR")
	v.BindEnv("datadirectory", prefix+"_DATA_DIR")
	v.BindEnv("databasefilename", prefix+"_DATABASE_FILENAME")
	v.BindEnv("maxresponsespercategory", prefix+"_MAX_RESPONSES_PER_CATEGORY")
	v.BindEnv("maxcontentitems", prefix+"_MAX_CONTENT_ITEMS")
	v.BindEnv("maxplans", prefix+"_MAX_PLANS")
	v.BindEnv("maxfaqs", prefix+"_MAX_FAQS")
	v.BindEnv("maxcachebytes", prefix+"_MAX_CACHE_BYTES")
	v.BindEnv("responseretentiondays", prefix+"_RESPONSE_RETENTION_DAYS")
	v.BindEnv("minaccesscount", prefix+"_MIN_ACCESS_COUNT")
	v.BindEnv("unsyncedretentiondays", prefix+"_UNSYNCED_RETENTION_DAYS")
	v.BindEnv("cleanupintervalminutes", prefix+"_CLEANUP_INTERVAL_MINUTES")
}

func (c *Config) validate() error {
	var problems []string

	// Adjust log level for development
	if c.LogLevel == "" || c.LogLevel == "error" {
		if c.IsDevelopment() || c.IsTest() {
			c.LogLevel = "info"
		}
	}

	switch c.Environment {
	case Development, Production, Test:
	default:
		problems = append(problems, fmt.Sprintf("invalid %s_ENV value %q", c.envPrefix, c.Environment))
	}

	if c.MaxResponsesPerCategory <= 0 {
		problems = append(problems, "maxresponsespercategory must be positive")
	}
	if c.MaxContentItems <= 0 {
		problems = append(problems, "maxcontentitems must be positive")
	}
	if c.MaxPlans <= 0 {
		problems = append(problems, "maxplans must be positive")
	}
	if c.MaxFaqs <= 0 {
		problems = append(problems, "maxfaqs must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) resolveDatabasePath() string {
	filename := c.DatabaseFilename
	if filename == "" {
		filename = c.AppName + ".db"
	}

	// Add environment suffix: guruai.development.db, guruai.test.db, etc.
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if ext == "" {
		ext = ".db"
	}
	filename = fmt.Sprintf("%s.%s%s", base, c.Environment, ext)

	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(c.DataDirectory, filename)
}

func (c *Config) ensureDirectories() {
	dirs := []string{c.DataDirectory, c.LogsDirectory}
	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Printf("config: failed to create directory %q: %v", dir, err)
			}
		}
	}
}

// Environment checks.

func (c *Config) IsDevelopment() bool { return c.Environment == Development }
func (c *Config) IsProduction() bool  { return c.Environment == Production }
func (c *Config) IsTest() bool        { return c.Environment == Test }

// DatabaseDSN returns the resolved database path.
func (c *Config) DatabaseDSN() string { return c.DatabasePath }
