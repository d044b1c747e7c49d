package config

import "github.com/hyperjump/bidsift/internal/ingest"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Patterns.Dir == "" {
		cfg.Patterns.Dir = "/usr/local/etc/bidsift/patterns"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/bidsift/data/bidsift.db"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/bidsift/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = ingest.DefaultExtensions
	}

	cfg.Scoring.ApplyDefaults()
	cfg.FastPath.ApplyDefaults()
	cfg.Classifier.ApplyDefaults()
	cfg.Boost.ApplyDefaults()
}
