package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"livetv-scraper/work/logger"
)

// Config holds all application configuration values for the scraper service.
// Operational knobs only; the listing base URL and stream proxy host live in
// the preference store so the front end can change them at runtime.
type Config struct {
	ListenPort        int           `json:"listenPort"`        // HTTP listen port for the API
	PrefsPath         string        `json:"prefsPath"`         // Path to the SQLite preference store
	UserAgent         string        `json:"userAgent"`         // Desktop browser User-Agent for outbound requests
	FetchTimeout      time.Duration `json:"fetchTimeout"`      // Per-request timeout for page fetches
	RequestsPerSecond int           `json:"requestsPerSecond"` // Outbound request pacing
	WorkerThreads     int           `json:"workerThreads"`     // Worker pool size for stream-link fetches
	InitialPageSize   int           `json:"initialPageSize"`   // Records loaded on first section visit
	MorePageSize      int           `json:"morePageSize"`      // Records loaded per "load more" step
	LinkCacheTTL      time.Duration `json:"linkCacheTTL"`      // Expiry for memoized stream-link sets
	LinkCacheSize     int           `json:"linkCacheSize"`     // Maximum entries in the stream-link cache
	Debug             bool          `json:"debug"`             // Enable debug logging
	LogLevel          string        `json:"logLevel"`          // Log level: DEBUG, INFO, WARN, ERROR
}

// ConfigFile mirrors Config for JSON marshaling; duration fields are
// stored as strings (e.g. "30s") and parsed into time.Duration.
type ConfigFile struct {
	ListenPort        int    `json:"listenPort"`
	PrefsPath         string `json:"prefsPath"`
	UserAgent         string `json:"userAgent"`
	FetchTimeout      string `json:"fetchTimeout"` // Duration as string (e.g. "30s")
	RequestsPerSecond int    `json:"requestsPerSecond"`
	WorkerThreads     int    `json:"workerThreads"`
	InitialPageSize   int    `json:"initialPageSize"`
	MorePageSize      int    `json:"morePageSize"`
	LinkCacheTTL      string `json:"linkCacheTTL"` // Duration as string (e.g. "10m")
	LinkCacheSize     int    `json:"linkCacheSize"`
	Debug             bool   `json:"debug"`
	LogLevel          string `json:"logLevel"`
}

const defaultConfigPath = "settings/config.json"

var (
	configCache *Config
	configMutex sync.RWMutex
)

// LoadConfig loads the configuration from file or returns the cached
// instance. Falls back to defaults when the file is missing or invalid,
// then runs a validation pass so every field carries a usable value.
func LoadConfig() *Config {
	configMutex.RLock()
	if configCache != nil {
		defer configMutex.RUnlock()
		return configCache
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check under write lock
	if configCache != nil {
		return configCache
	}

	path := defaultConfigPath
	if env := os.Getenv("SCRAPER_CONFIG"); env != "" {
		path = env
	}

	config, err := loadFromFile(path)
	if err != nil {
		logger.Warn("Failed to load config from %s: %v", path, err)
		logger.Warn("Falling back to default configuration...")
		config = getDefaultConfig()
	}

	validateAndSetDefaults(config)
	configCache = config
	return config
}

// ClearConfigCache resets the cached config, forcing a reload on the
// next LoadConfig call.
func ClearConfigCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	configCache = nil
}

// loadFromFile reads and parses the configuration from a JSON file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cf ConfigFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return convertFromFile(&cf)
}

// convertFromFile converts a ConfigFile to Config, parsing duration strings.
func convertFromFile(cf *ConfigFile) (*Config, error) {
	config := &Config{
		ListenPort:        cf.ListenPort,
		PrefsPath:         cf.PrefsPath,
		UserAgent:         cf.UserAgent,
		RequestsPerSecond: cf.RequestsPerSecond,
		WorkerThreads:     cf.WorkerThreads,
		InitialPageSize:   cf.InitialPageSize,
		MorePageSize:      cf.MorePageSize,
		LinkCacheSize:     cf.LinkCacheSize,
		Debug:             cf.Debug,
		LogLevel:          cf.LogLevel,
	}

	var err error
	if cf.FetchTimeout != "" {
		if config.FetchTimeout, err = time.ParseDuration(cf.FetchTimeout); err != nil {
			return nil, fmt.Errorf("invalid fetchTimeout: %w", err)
		}
	}
	if cf.LinkCacheTTL != "" {
		if config.LinkCacheTTL, err = time.ParseDuration(cf.LinkCacheTTL); err != nil {
			return nil, fmt.Errorf("invalid linkCacheTTL: %w", err)
		}
	}

	return config, nil
}

// getDefaultConfig returns a baseline configuration when no file is present.
func getDefaultConfig() *Config {
	return &Config{
		ListenPort:        8080,
		PrefsPath:         "settings/prefs.db",
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		FetchTimeout:      30 * time.Second,
		RequestsPerSecond: 2,
		WorkerThreads:     4,
		InitialPageSize:   15,
		MorePageSize:      10,
		LinkCacheTTL:      10 * time.Minute,
		LinkCacheSize:     512,
		Debug:             false,
		LogLevel:          "INFO",
	}
}

// validateAndSetDefaults fills in defaults for missing or invalid values.
func validateAndSetDefaults(config *Config) {
	if config.ListenPort <= 0 {
		config.ListenPort = 8080
	}
	if config.PrefsPath == "" {
		config.PrefsPath = "settings/prefs.db"
	}
	if config.UserAgent == "" {
		config.UserAgent = getDefaultConfig().UserAgent
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 30 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2
	}
	if config.WorkerThreads <= 0 {
		config.WorkerThreads = 4
	}
	if config.InitialPageSize <= 0 {
		config.InitialPageSize = 15
	}
	if config.MorePageSize <= 0 {
		config.MorePageSize = 10
	}
	if config.LinkCacheTTL <= 0 {
		config.LinkCacheTTL = 10 * time.Minute
	}
	if config.LinkCacheSize <= 0 {
		config.LinkCacheSize = 512
	}
	if config.LogLevel == "" {
		config.LogLevel = "INFO"
	}
}

// CreateExampleConfig writes an example config file to disk.
func CreateExampleConfig(path string) error {
	example := ConfigFile{
		ListenPort:        8080,
		PrefsPath:         "settings/prefs.db",
		UserAgent:         getDefaultConfig().UserAgent,
		FetchTimeout:      "30s",
		RequestsPerSecond: 2,
		WorkerThreads:     4,
		InitialPageSize:   15,
		MorePageSize:      10,
		LinkCacheTTL:      "10m",
		LinkCacheSize:     512,
		Debug:             false,
		LogLevel:          "INFO",
	}

	data, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
