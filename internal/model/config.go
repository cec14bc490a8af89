package model

import "time"

// Config is the complete engine configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Store       StoreConfig       `yaml:"store"`
	Video       VideoConfig       `yaml:"video"`
	Rubric      RubricConfig      `yaml:"rubric"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig holds the optional narrative-polish provider settings.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "" (disabled)
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`

	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`

	// CacheTTL enables response caching keyed by transcript hash; zero
	// disables the cache. Caching is a harness concern, the engine itself
	// stays stateless.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// RatePerSecond bounds outbound completion calls during batch runs.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// StoreConfig configures the evaluation result store.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite database path ("" = persistence disabled)

	// RetryMaxElapsed caps backoff retries on busy/locked writes.
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
}

// VideoConfig configures the optional face-presence heuristic.
type VideoConfig struct {
	Enabled   bool `yaml:"enabled"`
	MaxFrames int  `yaml:"max_frames"`
}

// RubricConfig points at an optional external rubric file. When Path is
// empty the embedded default tables are used.
type RubricConfig struct {
	Path string `yaml:"path"`
}

// ConcurrencyConfig bounds batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	JSONDir string `yaml:"json_dir"`
}

// DefaultConfig returns sensible defaults: LLM and persistence disabled,
// video off, embedded rubric.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      "",
			Model:         "",
			Timeout:       45 * time.Second,
			MaxTokens:     900,
			CacheTTL:      0,
			RatePerSecond: 1,
			Burst:         2,
		},
		Store: StoreConfig{
			Path:            "",
			RetryMaxElapsed: 10 * time.Second,
		},
		Video: VideoConfig{
			Enabled:   false,
			MaxFrames: 60,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
			JSONDir: "",
		},
	}
}
