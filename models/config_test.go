package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.MongoDatabase != "sjtubbs" {
		t.Errorf("MongoDatabase = %q, want sjtubbs", cfg.MongoDatabase)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.ProbeTimeout != time.Second {
		t.Errorf("ProbeTimeout = %v, want 1s", cfg.ProbeTimeout)
	}
	if cfg.ProbeCacheTTL != 168*time.Hour {
		t.Errorf("ProbeCacheTTL = %v, want 168h", cfg.ProbeCacheTTL)
	}
	if cfg.TopK != 2 {
		t.Errorf("TopK = %d, want 2", cfg.TopK)
	}
	if cfg.WorkerCount < 1 {
		t.Errorf("WorkerCount = %d, want >= 1", cfg.WorkerCount)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `mongo: mongodb://archive:27017
redis: redis:6379
probe_timeout: 250ms
workers: 0
top_k: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	t.Setenv("BBS_POSTGRES", "postgres://localhost/bbs")
	t.Setenv("BBS_TOP_K", "3")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"mongo from file", cfg.Mongo, "mongodb://archive:27017"},
		{"redis from file", cfg.Redis, "redis:6379"},
		{"postgres from env", cfg.Postgres, "postgres://localhost/bbs"},
		{"env overrides file", cfg.TopK, 3},
		{"duration parsed", cfg.ProbeTimeout, 250 * time.Millisecond},
		{"workers clamped", cfg.WorkerCount, 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("LoadConfig() error = nil for a missing explicit file")
	}
}
