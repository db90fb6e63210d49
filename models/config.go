// Package models defines data structures for configuration, sections and output documents.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir   = "output"
	DefaultBatchDelay  = 5 * time.Second
	DefaultCacheTTL    = 24 * time.Hour
	DefaultProvider    = "gemini"
	DefaultModel       = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config holds runtime configuration. Values come from an optional YAML file,
// then environment variables, then CLI flags.
type Config struct {
	OutputDir string `yaml:"output_dir"`

	Batch struct {
		Delay time.Duration `yaml:"delay"`
		// RatePerMinute switches the batch limiter to a token bucket when > 0.
		RatePerMinute float64 `yaml:"rate_per_minute"`
	} `yaml:"batch"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
		CacheDir  string        `yaml:"cache_dir"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"fetch"`

	LLM struct {
		Provider string        `yaml:"provider"`
		Model    string        `yaml:"model"`
		APIKey   string        `yaml:"api_key"`
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	DBPath string `yaml:"db_path"`
}

// LoadConfig reads .env (if present) and the YAML file at path (if present),
// applies environment overrides and fills defaults.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ResolveLLM()
	return cfg, nil
}

// ReadConfig is LoadConfig without ResolveLLM, for callers that layer flags on top.
// Static defaults are set before the file is read, so an explicit zero
// (delay: 0s, cache_ttl: 0s) is kept.
func ReadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// no config file, env and flags only
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DOC_LEVELER_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("DOC_LEVELER_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("DOC_LEVELER_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("DOC_LEVELER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
}

// DefaultConfig returns the static defaults. The model and API key depend on
// the provider and are filled by ResolveLLM.
func DefaultConfig() *Config {
	c := &Config{OutputDir: DefaultOutputDir}
	c.Batch.Delay = DefaultBatchDelay
	c.Fetch.Timeout = 30 * time.Second
	c.Fetch.UserAgent = "doc-leveler/1.0"
	c.Fetch.CacheDir = ".cache/html"
	c.Fetch.CacheTTL = DefaultCacheTTL
	c.LLM.Provider = DefaultProvider
	c.LLM.Timeout = 90 * time.Second
	return c
}

// ResolveLLM fills the provider-dependent model and API key once the provider is final.
func (c *Config) ResolveLLM() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
		if c.LLM.Provider == "openai" {
			c.LLM.Model = DefaultOpenAIModel
		}
	}
	if c.LLM.APIKey == "" {
		// provider-specific key as a fallback
		if c.LLM.Provider == "openai" {
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		} else {
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}
