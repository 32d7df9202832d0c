// Package config provides configuration loading and structs for the docsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Index     IndexConfig     `yaml:"index"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document database and the vector index snapshot.
type StorageConfig struct {
	DatabasePath      string `yaml:"database_path"`
	VectorIndexPath   string `yaml:"vector_index_path"`
	AnalyticsDisabled bool   `yaml:"analytics_disabled"`
}

// EmbeddingConfig holds embedding provider settings.
// Provider is one of: "openai", "onnx", "mock", "disabled".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SearchConfig holds query planning and fusion settings.
type SearchConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	MaxLimit         int     `yaml:"max_limit"`
	DefaultThreshold float64 `yaml:"default_threshold"`
	// HybridBonus is added to a semantic hit's score when the lexical
	// retriever also found it.
	HybridBonus float64 `yaml:"hybrid_bonus"`
	// LexicalDiscount multiplies the score of lexical-only hits in hybrid mode.
	LexicalDiscount float64 `yaml:"lexical_discount"`
	// LexicalSaturation divides the per-term occurrence average before capping at 1.0.
	LexicalSaturation float64 `yaml:"lexical_saturation"`
	// ScanPageSize is the document store page size used by the lexical scan
	// and by reindexing.
	ScanPageSize        int `yaml:"scan_page_size"`
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds"`
	PreviewLength       int `yaml:"preview_length"`
}

// IndexConfig holds index maintenance settings.
type IndexConfig struct {
	// PersistEvery controls how often reindexAll flushes the snapshot to disk
	// (every N documents).
	PersistEvery int `yaml:"persist_every"`
	// Workers is the background indexing pool size.
	Workers int `yaml:"workers"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
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
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
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
