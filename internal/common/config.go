package common

import (
	"fmt"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/urfave/cli/v2"
)

// LoadConfig reads the --config file (or the default search path) and then
// applies any connection flags the user set explicitly.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := map[string]*string{
		"mongo":      &cfg.Mongo,
		"redis":      &cfg.Redis,
		"postgres":   &cfg.Postgres,
		"sqlite":     &cfg.SQLite,
		"nats":       &cfg.NATS,
		"base-url":   &cfg.BaseURL,
		"output-dir": &cfg.OutputDir,
		"ollama-url": &cfg.OllamaURL,
	}
	for flag, dst := range overrides {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.IsSet("workers") && c.Int("workers") > 0 {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("top-k") && c.Int("top-k") > 0 {
		cfg.TopK = c.Int("top-k")
	}
	return cfg, nil
}
