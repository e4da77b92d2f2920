package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".nftdash.json"

// Environment overrides, applied after the config file.
const (
	EnvAPIBaseURL = "NFTDASH_API_BASE_URL"
	EnvLogLevel   = "NFTDASH_LOG_LEVEL"
)

// GlobalConfig holds application-wide settings.
type GlobalConfig struct {
	APIBaseURL            string  `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	RateLimitPerSecond    float64 `json:"rate_limit_per_second" yaml:"rate_limit_per_second"`
	RateLimitBurst        int     `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	EnrichmentConcurrency int     `json:"enrichment_concurrency" yaml:"enrichment_concurrency"`
	NFTCacheTTLSeconds    int     `json:"nft_cache_ttl_seconds" yaml:"nft_cache_ttl_seconds"`
	PlaceholderImage      string  `json:"placeholder_image" yaml:"placeholder_image"`
	Locale                string  `json:"locale" yaml:"locale"`
	LogLevel              string  `json:"log_level" yaml:"log_level"`
	LogFile               string  `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	IntervalCount         int     `json:"interval_count" yaml:"interval_count"`
	DefaultView           string  `json:"default_view" yaml:"default_view"`
}

// DefaultConfig returns the settings used for keys missing from the file.
func DefaultConfig() GlobalConfig {
	return GlobalConfig{
		APIBaseURL:            "http://localhost:8000/api/v1",
		RequestTimeoutSeconds: 10,
		RateLimitPerSecond:    10,
		RateLimitBurst:        5,
		EnrichmentConcurrency: 8,
		NFTCacheTTLSeconds:    300,
		PlaceholderImage:      "assets/placeholder.jpeg",
		Locale:                "zh-TW",
		LogLevel:              "info",
		IntervalCount:         4,
		DefaultView:           "time-based",
	}
}

// RequestTimeout returns the per-request timeout.
func (g GlobalConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

// NFTCacheTTL returns how long NFT details stay cached.
func (g GlobalConfig) NFTCacheTTL() time.Duration {
	return time.Duration(g.NFTCacheTTLSeconds) * time.Second
}

// Validate returns every problem found in the settings.
func (g GlobalConfig) Validate() []string {
	var problems []string
	u, err := url.Parse(g.APIBaseURL)
	if strings.TrimSpace(g.APIBaseURL) == "" || err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api_base_url %q is not an absolute URL", g.APIBaseURL))
	}
	if g.RequestTimeoutSeconds <= 0 {
		problems = append(problems, "request_timeout_seconds must be positive")
	}
	if g.RateLimitPerSecond < 0 {
		problems = append(problems, "rate_limit_per_second must not be negative")
	}
	if g.RateLimitPerSecond > 0 && g.RateLimitBurst <= 0 {
		problems = append(problems, "rate_limit_burst must be positive when rate limiting is enabled")
	}
	if g.EnrichmentConcurrency <= 0 {
		problems = append(problems, "enrichment_concurrency must be positive")
	}
	if g.NFTCacheTTLSeconds < 0 {
		problems = append(problems, "nft_cache_ttl_seconds must not be negative")
	}
	if g.IntervalCount <= 0 {
		problems = append(problems, "interval_count must be positive")
	}
	switch g.Locale {
	case "zh-TW", "en":
	default:
		problems = append(problems, fmt.Sprintf("locale %q is not supported (zh-TW, en)", g.Locale))
	}
	switch g.DefaultView {
	case "time-based", "buyers-sellers", "marketplace", "resale", "token":
	default:
		problems = append(problems, fmt.Sprintf("default_view %q is unknown", g.DefaultView))
	}
	return problems
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// fileConfig mirrors GlobalConfig with pointers so missing keys keep defaults.
type fileConfig struct {
	APIBaseURL            *string  `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeoutSeconds *int     `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	RateLimitPerSecond    *float64 `json:"rate_limit_per_second" yaml:"rate_limit_per_second"`
	RateLimitBurst        *int     `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	EnrichmentConcurrency *int     `json:"enrichment_concurrency" yaml:"enrichment_concurrency"`
	NFTCacheTTLSeconds    *int     `json:"nft_cache_ttl_seconds" yaml:"nft_cache_ttl_seconds"`
	PlaceholderImage      *string  `json:"placeholder_image" yaml:"placeholder_image"`
	Locale                *string  `json:"locale" yaml:"locale"`
	LogLevel              *string  `json:"log_level" yaml:"log_level"`
	LogFile               *string  `json:"log_file" yaml:"log_file"`
	IntervalCount         *int     `json:"interval_count" yaml:"interval_count"`
	DefaultView           *string  `json:"default_view" yaml:"default_view"`
}

func (fc fileConfig) merge() GlobalConfig {
	g := DefaultConfig()
	if fc.APIBaseURL != nil {
		g.APIBaseURL = *fc.APIBaseURL
	}
	if fc.RequestTimeoutSeconds != nil {
		g.RequestTimeoutSeconds = *fc.RequestTimeoutSeconds
	}
	if fc.RateLimitPerSecond != nil {
		g.RateLimitPerSecond = *fc.RateLimitPerSecond
	}
	if fc.RateLimitBurst != nil {
		g.RateLimitBurst = *fc.RateLimitBurst
	}
	if fc.EnrichmentConcurrency != nil {
		g.EnrichmentConcurrency = *fc.EnrichmentConcurrency
	}
	if fc.NFTCacheTTLSeconds != nil {
		g.NFTCacheTTLSeconds = *fc.NFTCacheTTLSeconds
	}
	if fc.PlaceholderImage != nil {
		g.PlaceholderImage = *fc.PlaceholderImage
	}
	if fc.Locale != nil {
		g.Locale = *fc.Locale
	}
	if fc.LogLevel != nil {
		g.LogLevel = *fc.LogLevel
	}
	if fc.LogFile != nil {
		g.LogFile = *fc.LogFile
	}
	if fc.IntervalCount != nil {
		g.IntervalCount = *fc.IntervalCount
	}
	if fc.DefaultView != nil {
		g.DefaultView = *fc.DefaultView
	}
	return g
}

// LoadConfigFromFile reads path, returning defaults when it does not exist.
func LoadConfigFromFile(path string) (GlobalConfig, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return GlobalConfig{}, err
	}
	defer func() { _ = f.Close() }()
	if isYAML(path) {
		return LoadYAMLConfig(f)
	}
	return LoadConfig(f)
}

// LoadConfig decodes a JSON config.
func LoadConfig(r io.Reader) (GlobalConfig, error) {
	var fc fileConfig
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return GlobalConfig{}, err
	}
	return fc.merge(), nil
}

// LoadYAMLConfig decodes a YAML config.
func LoadYAMLConfig(r io.Reader) (GlobalConfig, error) {
	var fc fileConfig
	if err := yaml.NewDecoder(r).Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return GlobalConfig{}, err
	}
	return fc.merge(), nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; existing variables are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func ApplyEnv(g GlobalConfig) GlobalConfig {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		g.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		g.LogLevel = v
	}
	return g
}

// SaveConfig validates cfg, backs up any existing file and writes atomically.
func SaveConfig(cfg GlobalConfig, path string) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(problems, "; "))
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}
