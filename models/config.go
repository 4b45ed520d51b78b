// Package models defines data structures for configuration and parsing.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the origin relative asset paths in archived pages resolve against.
const DefaultBaseURL = "http://bbs.sjtu.edu.cn"

// Config holds runtime configuration. Values come from config.yml, then
// BBS_* environment variables, then CLI flags applied by the caller.
type Config struct {
	Mongo         string `mapstructure:"mongo"`
	MongoDatabase string `mapstructure:"mongo_database"`
	Redis         string `mapstructure:"redis"`
	Postgres      string `mapstructure:"postgres"`
	SQLite        string `mapstructure:"sqlite"`
	NATS          string `mapstructure:"nats"`
	NATSSubject   string `mapstructure:"nats_subject"`
	OutputDir     string `mapstructure:"output_dir"`

	BaseURL       string        `mapstructure:"base_url"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	ProbeRate     float64       `mapstructure:"probe_rate"`
	ProbeCacheDir string        `mapstructure:"probe_cache_dir"`
	ProbeCacheTTL time.Duration `mapstructure:"probe_cache_ttl"`

	OllamaURL      string `mapstructure:"ollama_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`

	WorkerCount int `mapstructure:"workers"`
	TopK        int `mapstructure:"top_k"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "sjtubbs")
	v.SetDefault("redis", "")
	v.SetDefault("postgres", "")
	v.SetDefault("sqlite", "bbs-archive.db")
	v.SetDefault("nats", "")
	v.SetDefault("nats_subject", "bbs.topics")
	v.SetDefault("output_dir", "bbs-results")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("probe_timeout", "1s")
	v.SetDefault("probe_rate", 20)
	v.SetDefault("probe_cache_dir", "")
	v.SetDefault("probe_cache_ttl", "168h")
	v.SetDefault("ollama_url", "")
	v.SetDefault("embedding_model", "paraphrase-multilingual")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("top_k", 2)
}

// LoadConfig reads configuration from path, or from config.yml in the working
// directory and $HOME/.bbs-archive-parser when path is empty. A missing
// config file is not an error; defaults and environment still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bbs-archive-parser"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.TopK < 1 {
		cfg.TopK = 1
	}
	return cfg, nil
}
