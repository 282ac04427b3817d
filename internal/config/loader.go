package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FOOTSCAN_"

// LoadConfig loads configuration from a YAML or JSON file, applies
// environment overrides and validates the result. An empty path yields the
// defaults plus overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := parseConfig(path, data, cfg); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func parseConfig(path string, data []byte, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse config (tried YAML and JSON): %w", err)
			}
		}
	}
	return nil
}

// LoadEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnvOverrides copies FOOTSCAN_* variables onto cfg.
func ApplyEnvOverrides(cfg *Config) error {
	if v, ok := lookupEnv("RENDERER"); ok {
		cfg.Scraping.Renderer = strings.ToLower(v)
	}
	if v, ok := lookupEnv("BROWSER_BIN"); ok {
		cfg.Scraping.BrowserBin = v
	}
	if v, ok := lookupEnv("USER_AGENT"); ok {
		cfg.Scraping.UserAgent = v
	}
	if v, ok := lookupEnv("MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_PAGES must be an integer: %w", EnvPrefix, err)
		}
		cfg.Scraping.MaxPages = n
	}
	if v, ok := lookupEnv("AUTO_PAGINATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTO_PAGINATE must be a boolean: %w", EnvPrefix, err)
		}
		cfg.Scraping.AutoPaginate = b
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookupEnv("LOG_FORMAT"); ok {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v, ok := lookupEnv("PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT must be an integer: %w", EnvPrefix, err)
		}
		cfg.Server.Port = n
	}
	if v, ok := lookupEnv("ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// ValidateConfig validates the configuration for required fields and consistency
func ValidateConfig(cfg *Config) error {
	switch cfg.Scraping.Renderer {
	case "browser", "http":
	default:
		return fmt.Errorf("unknown renderer: %s (valid: browser, http)", cfg.Scraping.Renderer)
	}

	if cfg.Scraping.MaxPages < 1 {
		return fmt.Errorf("scraping.maxPages must be >= 1")
	}
	if cfg.Scraping.Polite.DelayMS < 0 {
		return fmt.Errorf("scraping.polite.delayMs must be >= 0")
	}
	if cfg.Scraping.PageWaitMS < 0 {
		return fmt.Errorf("scraping.pageWaitMs must be >= 0")
	}
	if cfg.Scraping.MaxRetries < 1 {
		cfg.Scraping.MaxRetries = 1
	}
	if cfg.Scraping.Timeout <= 0 {
		cfg.Scraping.Timeout = 30
	}

	ex := cfg.Extraction
	if ex.MinPrice <= 0 || ex.MaxPrice <= ex.MinPrice {
		return fmt.Errorf("extraction price range must satisfy 0 < minPrice < maxPrice")
	}
	if ex.PriceWordRatio <= 0 || ex.PriceWordRatio > 1 {
		return fmt.Errorf("extraction.priceWordRatio must be in (0, 1]")
	}
	if ex.MinAlphaRatio < 0 || ex.MinAlphaRatio > 1 {
		return fmt.Errorf("extraction.minAlphaRatio must be in [0, 1]")
	}
	if ex.MinContainerScore < 1 {
		return fmt.Errorf("extraction.minContainerScore must be >= 1")
	}
	if ex.MaxContainers < 1 {
		return fmt.Errorf("extraction.maxContainers must be >= 1")
	}
	if ex.NameKeyLength < 1 {
		return fmt.Errorf("extraction.nameKeyLength must be >= 1")
	}
	if ex.MaxPromotions < 1 {
		return fmt.Errorf("extraction.maxPromotions must be >= 1")
	}
	if ex.MaxPercentPromotions < 1 {
		return fmt.Errorf("extraction.maxPercentPromotions must be >= 1")
	}

	switch cfg.Output.Format {
	case "csv", "xlsx", "json":
	default:
		return fmt.Errorf("output.format must be 'csv', 'xlsx' or 'json'")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}

	return nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(cfg *Config, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	default:
		data, err = yaml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
