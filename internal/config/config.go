// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSource is the published TechMart transactions export.
const DefaultSource = "https://drive.google.com/uc?id=16yRoXnEY8AP50tmyCPSdTMOzXD8ipxdb&export=download"

// Config holds the settings shared by the API server and the CLI.
type Config struct {
	Source      string        // data source URI, see source.Open
	Table       string        // table queried by SQL and BigQuery sources
	CacheTTL    time.Duration // lifetime of a loaded row-set
	HTTPTimeout time.Duration // timeout for fetching remote CSV files
	Port        string
	LogLevel    string
	LogFormat   string
	GeminiKey   string
	GeminiModel string
	NotionToken string // integration token for notion:// sources
	QueueSize   int    // capacity of the refresh job queue
}

// Load returns the configuration from environment variables, falling back to
// defaults for anything unset.
func Load() Config {
	return Config{
		Source:      GetEnv("TECHMART_SOURCE", DefaultSource),
		Table:       GetEnv("TECHMART_TABLE", "transactions"),
		CacheTTL:    GetEnvDuration("TECHMART_CACHE_TTL", 10*time.Minute),
		HTTPTimeout: GetEnvDuration("TECHMART_HTTP_TIMEOUT", 60*time.Second),
		Port:        GetEnv("PORT", "8080"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		LogFormat:   GetEnv("LOG_FORMAT", "console"),
		GeminiKey:   GetEnv("GEMINI_API_KEY", ""),
		GeminiModel: GetEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		NotionToken: GetEnv("NOTION_TOKEN", ""),
		QueueSize:   GetEnvInt("TECHMART_JOB_QUEUE_SIZE", 100),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("config: data source is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config: cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: HTTP timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("config: job queue size must be positive, got %d", c.QueueSize)
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("config: table name is required")
	}
	return nil
}

// GetEnv returns the value of key, or defaultVal when it is not set.
func GetEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// GetEnvInt returns key parsed as an int, or defaultVal when unset or invalid.
func GetEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetEnvDuration accepts Go durations ("90s", "10m") or a bare number of seconds.
func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
