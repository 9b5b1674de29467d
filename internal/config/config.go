package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default pipeline settings, matching the generation service's practical
// limits for a single request.
const (
	DefaultTargetCount    = 200
	DefaultExampleCount   = 30
	DefaultMaxAttempts    = 3
	DefaultSentinelTag    = "fraction"
	DefaultShortfallDelay = 2 * time.Second
	DefaultFaultDelay     = 5 * time.Second
	DefaultSuccessPause   = 1 * time.Second
)

// Config holds all paragen configuration. It is constructed once at startup
// and passed explicitly into each component.
type Config struct {
	// Generation provider
	Provider ProviderConfig `yaml:"provider"`

	// Pipeline knobs
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Paths
	Paths PathsConfig `yaml:"paths"`
}

// ProviderConfig configures the external text-generation service.
type ProviderConfig struct {
	Name    string `yaml:"name"` // openai, gemini
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// PipelineConfig configures the batch generation run.
type PipelineConfig struct {
	// TargetCount is the number of paraphrases requested per tag. It is the
	// single source of truth for generation, artifact size, and merge
	// validation.
	TargetCount int `yaml:"target_count"`

	// ExampleCount is the number of example questions sampled per tag.
	ExampleCount int `yaml:"example_count"`

	// MaxAttempts bounds provider calls per work item.
	MaxAttempts int `yaml:"max_attempts"`

	// SentinelTag is a placeholder tag excluded from the work list.
	SentinelTag string `yaml:"sentinel_tag"`

	ShortfallDelay Duration `yaml:"shortfall_delay"`
	FaultDelay     Duration `yaml:"fault_delay"`
	SuccessPause   Duration `yaml:"success_pause"`
}

// PathsConfig configures file locations for a run.
type PathsConfig struct {
	OutputDir  string `yaml:"output_dir"`
	LedgerPath string `yaml:"ledger_path"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			TargetCount:    DefaultTargetCount,
			ExampleCount:   DefaultExampleCount,
			MaxAttempts:    DefaultMaxAttempts,
			SentinelTag:    DefaultSentinelTag,
			ShortfallDelay: Duration(DefaultShortfallDelay),
			FaultDelay:     Duration(DefaultFaultDelay),
			SuccessPause:   Duration(DefaultSuccessPause),
		},
		Paths: PathsConfig{
			OutputDir: "paraphrased_output",
		},
	}
}

// Load reads a YAML config file and applies environment overrides on top of
// defaults. A missing file is not an error; env overrides still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values.
// API keys are normally supplied via environment, never via file.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("PARAGEN_PROVIDER"); p != "" {
		c.Provider.Name = p
	}
	if m := os.Getenv("PARAGEN_MODEL"); m != "" {
		c.Provider.Model = m
	}
	if c.Provider.APIKey == "" {
		switch c.Provider.Name {
		case "openai":
			c.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			c.Provider.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if dir := os.Getenv("PARAGEN_OUTPUT_DIR"); dir != "" {
		c.Paths.OutputDir = dir
	}
}

// applyDefaults backfills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	if c.Pipeline.TargetCount <= 0 {
		c.Pipeline.TargetCount = DefaultTargetCount
	}
	if c.Pipeline.ExampleCount <= 0 {
		c.Pipeline.ExampleCount = DefaultExampleCount
	}
	if c.Pipeline.MaxAttempts <= 0 {
		c.Pipeline.MaxAttempts = DefaultMaxAttempts
	}
	if c.Pipeline.SentinelTag == "" {
		c.Pipeline.SentinelTag = DefaultSentinelTag
	}
	if c.Pipeline.ShortfallDelay <= 0 {
		c.Pipeline.ShortfallDelay = Duration(DefaultShortfallDelay)
	}
	if c.Pipeline.FaultDelay <= 0 {
		c.Pipeline.FaultDelay = Duration(DefaultFaultDelay)
	}
	if c.Pipeline.SuccessPause < 0 {
		c.Pipeline.SuccessPause = Duration(DefaultSuccessPause)
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "paraphrased_output"
	}
}
