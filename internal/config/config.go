// Package config provides configuration loading and structs for the bidsift pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/bidsift/internal/classify"
	"github.com/hyperjump/bidsift/internal/fastpath"
	"github.com/hyperjump/bidsift/internal/scoring"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool                      `yaml:"debug"`
	Server     ServerConfig              `yaml:"server"`
	Patterns   PatternsConfig            `yaml:"patterns"`
	Scoring    scoring.ScoringConfig     `yaml:"scoring"`
	FastPath   fastpath.FastPathConfig   `yaml:"fastpath"`
	Classifier classify.ClassifierConfig `yaml:"classifier"`
	Boost      classify.BoostConfig      `yaml:"boost"`
	Embedding  EmbeddingConfig           `yaml:"embedding"`
	Storage    StorageConfig             `yaml:"storage"`
	Vocab      VocabConfig               `yaml:"vocab"`
	Ingest     IngestConfig              `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PatternsConfig holds trade pattern file settings.
type PatternsConfig struct {
	// Dir is the directory of per-trade YAML pattern files.
	Dir string `yaml:"dir"`
	// Watch enables hot reload of pattern files while serving.
	Watch bool `yaml:"watch"`
}

// StorageConfig holds the path for the classification cache and run store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// VocabConfig holds the corpus term index location. An empty IndexPath
// keeps the index in memory for the duration of one run.
type VocabConfig struct {
	IndexPath string `yaml:"index_path"`
}

// IngestConfig holds directory scan settings.
type IngestConfig struct {
	Extensions []string `yaml:"extensions"`
}

// EmbeddingConfig holds ONNX embedder settings for the local classifier.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// Load reads and parses the config file at path, applies defaults, expands
// paths, and validates. Returns an error if the file cannot be read or
// parsed, or if a value is out of range.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Patterns.Dir = expandPath(cfg.Patterns.Dir, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if cfg.Vocab.IndexPath != "" {
		cfg.Vocab.IndexPath = expandPath(cfg.Vocab.IndexPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that defaults cannot repair, such as
// negative worker counts or band thresholds out of order.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.FastPath.Workers < 0 {
		return fmt.Errorf("fastpath workers must not be negative, got %d", c.FastPath.Workers)
	}
	if c.Scoring.MediumBandThreshold > c.Scoring.HighBandThreshold {
		return fmt.Errorf("scoring medium band threshold %.1f exceeds high band threshold %.1f",
			c.Scoring.MediumBandThreshold, c.Scoring.HighBandThreshold)
	}
	if c.FastPath.MediumMinItems > c.FastPath.GoodMinItems {
		return fmt.Errorf("fastpath medium_min_items %d exceeds good_min_items %d",
			c.FastPath.MediumMinItems, c.FastPath.GoodMinItems)
	}
	switch c.Classifier.Provider {
	case classify.ProviderNone, classify.ProviderGemini, classify.ProviderLocal:
	default:
		return fmt.Errorf("unknown classifier provider %q", c.Classifier.Provider)
	}
	switch c.Boost.Mode {
	case classify.ModeAdditive, classify.ModeMultiplicative:
	default:
		return fmt.Errorf("unknown boost mode %q", c.Boost.Mode)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
