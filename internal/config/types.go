// Package config provides configuration types and loading functionality
// for the footwear promotion analyzer.
package config

import "github.com/marcosevegrand/footwear-promo/internal/extractor"

// Config is the root configuration structure
type Config struct {
	Scraping   ScrapingConfig   `yaml:"scraping" json:"scraping"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// ScrapingConfig controls how listing pages are fetched
type ScrapingConfig struct {
	Renderer     string       `yaml:"renderer" json:"renderer"`
	UserAgent    string       `yaml:"userAgent,omitempty" json:"userAgent,omitempty"`
	Timeout      int          `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	AutoPaginate bool         `yaml:"autoPaginate" json:"autoPaginate"`
	MaxPages     int          `yaml:"maxPages" json:"maxPages"`
	PageWaitMS   int          `yaml:"pageWaitMs" json:"pageWaitMs"`
	MaxRetries   int          `yaml:"maxRetries" json:"maxRetries"`
	BrowserBin   string       `yaml:"browserBin,omitempty" json:"browserBin,omitempty"`
	Polite       PoliteConfig `yaml:"polite" json:"polite"`
}

// PoliteConfig controls rate limiting and ethical scraping
type PoliteConfig struct {
	DelayMS          int  `yaml:"delayMs" json:"delayMs"`
	RespectRobotsTxt bool `yaml:"respectRobotsTxt" json:"respectRobotsTxt"`
}

// ExtractionConfig holds the heuristic thresholds of the extraction engine.
type ExtractionConfig struct {
	MinContainerScore    int     `yaml:"minContainerScore" json:"minContainerScore"`
	MaxContainers        int     `yaml:"maxContainers" json:"maxContainers"`
	PriceWordRatio       float64 `yaml:"priceWordRatio" json:"priceWordRatio"`
	MinAlphaRatio        float64 `yaml:"minAlphaRatio" json:"minAlphaRatio"`
	MinPrice             float64 `yaml:"minPrice" json:"minPrice"`
	MaxPrice             float64 `yaml:"maxPrice" json:"maxPrice"`
	NameKeyLength        int     `yaml:"nameKeyLength" json:"nameKeyLength"`
	MinNameLength        int     `yaml:"minNameLength" json:"minNameLength"`
	MaxPromotions        int     `yaml:"maxPromotions" json:"maxPromotions"`
	MaxPercentPromotions int     `yaml:"maxPercentPromotions" json:"maxPercentPromotions"`
	CleanScripts         bool    `yaml:"cleanScripts" json:"cleanScripts"`
}

// ToOptions converts the section into engine options.
func (c ExtractionConfig) ToOptions() *extractor.Options {
	return &extractor.Options{
		MinContainerScore:    c.MinContainerScore,
		MaxContainers:        c.MaxContainers,
		PriceWordRatio:       c.PriceWordRatio,
		MinAlphaRatio:        c.MinAlphaRatio,
		MinPrice:             c.MinPrice,
		MaxPrice:             c.MaxPrice,
		NameKeyLength:        c.NameKeyLength,
		MinNameLength:        c.MinNameLength,
		MaxPromotions:        c.MaxPromotions,
		MaxPercentPromotions: c.MaxPercentPromotions,
		CleanScripts:         c.CleanScripts,
	}
}

// OutputConfig controls report generation
type OutputConfig struct {
	Format     string `yaml:"format" json:"format"`
	OutputPath string `yaml:"outputPath" json:"outputPath"`
	OnSaleOnly bool   `yaml:"onSaleOnly" json:"onSaleOnly"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Host           string   `yaml:"host" json:"host"`
	Port           int      `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	opts := extractor.DefaultOptions()
	return &Config{
		Scraping: ScrapingConfig{
			Renderer:     "browser",
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:      30,
			AutoPaginate: true,
			MaxPages:     10,
			PageWaitMS:   3000,
			MaxRetries:   3,
			Polite: PoliteConfig{
				DelayMS:          2000,
				RespectRobotsTxt: true,
			},
		},
		Extraction: ExtractionConfig{
			MinContainerScore:    opts.MinContainerScore,
			MaxContainers:        opts.MaxContainers,
			PriceWordRatio:       opts.PriceWordRatio,
			MinAlphaRatio:        opts.MinAlphaRatio,
			MinPrice:             opts.MinPrice,
			MaxPrice:             opts.MaxPrice,
			NameKeyLength:        opts.NameKeyLength,
			MinNameLength:        opts.MinNameLength,
			MaxPromotions:        opts.MaxPromotions,
			MaxPercentPromotions: opts.MaxPercentPromotions,
			CleanScripts:         opts.CleanScripts,
		},
		Output: OutputConfig{
			Format:     "csv",
			OutputPath: "./reports",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
