// Package config provides configuration loading and validation for the CLI
// and server. Values come from a JSON file, with environment variables
// filling any gaps (a .env file is loaded by the command layer before this
// package runs).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the assistant configuration. All fields are optional in
// the file; credentials fall back to environment variables and the rest to
// defaults.
type Config struct {
	// Provider credentials
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`
	SearchAPIKey   string `json:"search_api_key,omitempty"`
	SearchEngineID string `json:"search_engine_id,omitempty"`
	RerankEndpoint string `json:"rerank_endpoint,omitempty" validate:"omitempty,url"`
	RerankAPIKey   string `json:"rerank_api_key,omitempty"`
	RerankModel    string `json:"rerank_model,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty disables persistence

	// Search defaults
	Location string `json:"location,omitempty"`

	// Models
	ModelLite     string `json:"model_lite,omitempty"`
	ModelStandard string `json:"model_standard,omitempty"`

	// Behavior
	Concurrency int  `json:"concurrency,omitempty" validate:"gte=0,lte=8"`
	MaxJobs     int  `json:"max_jobs,omitempty" validate:"gte=0,lte=5"`
	UseBrowser  bool `json:"use_browser,omitempty"` // Use headless browser for SPA job pages
	Verbose     bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file. An empty path yields a config
// built purely from environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv fills empty credential fields from the environment.
func (c *Config) applyEnv() {
	fill := func(field *string, env string) {
		if *field == "" {
			*field = os.Getenv(env)
		}
	}
	fill(&c.GeminiAPIKey, "GEMINI_API_KEY")
	fill(&c.SearchAPIKey, "GOOGLE_SEARCH_API_KEY")
	fill(&c.SearchEngineID, "GOOGLE_SEARCH_CX")
	fill(&c.RerankEndpoint, "RERANK_ENDPOINT")
	fill(&c.RerankAPIKey, "RERANK_API_KEY")
	fill(&c.RerankModel, "RERANK_MODEL")
	fill(&c.DatabaseURL, "DATABASE_URL")
}

// Validate checks structural constraints. Required credentials are checked
// later, by the collaborator that needs them, so commands that never touch
// a provider run without its key.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if invalid, ok := err.(*validator.InvalidValidationError); ok {
			return fmt.Errorf("config validation failed: %w", invalid)
		}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			return fmt.Errorf("config error: field %s failed rule %q", fieldErr.Field(), fieldErr.Tag())
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. File and environment values win over defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Location == "" {
		result.Location = defaults.Location
	}
	if result.ModelLite == "" {
		result.ModelLite = defaults.ModelLite
	}
	if result.ModelStandard == "" {
		result.ModelStandard = defaults.ModelStandard
	}
	if result.RerankModel == "" {
		result.RerankModel = defaults.RerankModel
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.MaxJobs == 0 {
		result.MaxJobs = defaults.MaxJobs
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
