// Package config provides configuration loading and structs for the Atsume server.
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
	Context   ContextConfig   `yaml:"context"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the vector store snapshot.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorStorePath string `yaml:"vector_store_path"`
}

// EmbeddingConfig holds embedding provider settings. The API key is read
// from the named environment variable, never from the config file.
type EmbeddingConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// APIKey resolves the provider API key from the environment.
func (e *EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// SearchConfig holds retrieval, fusion, and chunking settings.
type SearchConfig struct {
	CandidatePoolSize   int     `yaml:"candidate_pool_size"`
	SemanticRankWeight  float64 `yaml:"semantic_rank_weight"`
	LexicalRankWeight   float64 `yaml:"lexical_rank_weight"`
	SemanticScoreWeight float64 `yaml:"semantic_score_weight"`
	LexicalScoreWeight  float64 `yaml:"lexical_score_weight"`
	SuggestionLimit     int     `yaml:"suggestion_limit"`
	ChunkSize           int     `yaml:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap"`
}

// ContextConfig holds context assembly defaults.
type ContextConfig struct {
	DefaultMaxTokens int    `yaml:"default_max_tokens"`
	DefaultMaxChunks int    `yaml:"default_max_chunks"`
	TokenEstimator   string `yaml:"token_estimator"` // "heuristic" or "tiktoken"
	TiktokenEncoding string `yaml:"tiktoken_encoding"`
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
	cfg.Storage.VectorStorePath = expandPath(cfg.Storage.VectorStorePath, configDir)
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
