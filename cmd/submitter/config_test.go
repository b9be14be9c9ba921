package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadConfig_RequiresLimitAndPeriod(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RATE_RESET_SCHEDULE", "")
	t.Setenv("RATE_LIMIT", "")
	t.Setenv("RATE_PERIOD", "1s")
	if _, err := readConfig(); err == nil {
		t.Fatalf("expected error without RATE_LIMIT")
	}

	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_PERIOD", "")
	if _, err := readConfig(); err == nil {
		t.Fatalf("expected error without RATE_PERIOD")
	}

	t.Setenv("RATE_RESET_SCHEDULE", "* * * * *")
	if _, err := readConfig(); err != nil {
		t.Fatalf("schedule should replace period: %v", err)
	}
}

func TestReadConfig_FileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submitter.yaml")
	content := `
submit_url: http://localhost:8081/api/v3/lk/documents/create
rate:
  limit: 10
  period: 2s
  acquire_timeout: 500ms
workers: 2
stats:
  backends: [memory, sqlite]
  sqlite_path: /tmp/journal.db
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RATE_LIMIT", "3")
	t.Setenv("RATE_PERIOD", "")
	t.Setenv("STATS_BACKEND", "")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.rateLimit != 3 {
		t.Fatalf("expected env to override limit, got %d", cfg.rateLimit)
	}
	if cfg.ratePeriod != 2*time.Second || cfg.acquireTimeout != 500*time.Millisecond {
		t.Fatalf("expected durations from file, got %s/%s", cfg.ratePeriod, cfg.acquireTimeout)
	}
	if cfg.workers != 2 || !strings.HasPrefix(cfg.submitURL, "http://localhost:8081") {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.hasBackend("sqlite") || cfg.statsSQLitePath != "/tmp/journal.db" {
		t.Fatalf("expected sqlite backend from file, got %v", cfg.statsBackends)
	}
}

func TestReadConfig_RedisBackendNeedsAddr(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_PERIOD", "1s")
	t.Setenv("STATS_BACKEND", "memory, redis")
	t.Setenv("STATS_REDIS_ADDR", "")

	if _, err := readConfig(); err == nil {
		t.Fatalf("expected error when redis backend has no address")
	}

	t.Setenv("STATS_BACKEND", "kafka")
	if _, err := readConfig(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadDocuments_FromStdin(t *testing.T) {
	docs, err := loadDocuments(nil, strings.NewReader(`{"doc_id":"DOC123","doc_type":"LP_INTRODUCE_GOODS","reg_date":"2024-01-16"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].DocID != "DOC123" || docs[0].RegDate.Day() != 16 {
		t.Fatalf("unexpected documents %+v", docs)
	}

	if _, err := loadDocuments(nil, strings.NewReader(`{}`)); err == nil {
		t.Fatalf("expected error for document without doc_id")
	}
}

func TestReadConfig_FileBackendsAreNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submitter.yaml")
	content := `
rate:
  limit: 2
  period: 1s
stats:
  backends: [" Memory ", "PROMETHEUS", ""]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RATE_LIMIT", "")
	t.Setenv("RATE_PERIOD", "")
	t.Setenv("RATE_RESET_SCHEDULE", "")
	t.Setenv("STATS_BACKEND", "")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.statsBackends) != 2 || !cfg.hasBackend("memory") || !cfg.hasBackend("prometheus") {
		t.Fatalf("expected normalized backends, got %q", cfg.statsBackends)
	}
}
