package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	submitURL      string
	rateLimit      int
	ratePeriod     time.Duration
	resetSchedule  string
	acquireTimeout time.Duration
	httpTimeout    time.Duration
	signature      string
	repeat         int
	workers        int
	logLevel       string

	statsBackends      []string
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsSQLitePath    string
	metricsAddr        string
}

// fileConfig é o formato do CONFIG_FILE. Variáveis de ambiente sempre têm precedência.
type fileConfig struct {
	SubmitURL string `yaml:"submit_url"`
	Rate      struct {
		Limit          int           `yaml:"limit"`
		Period         time.Duration `yaml:"period"`
		ResetSchedule  string        `yaml:"reset_schedule"`
		AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	} `yaml:"rate"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Signature   string        `yaml:"signature"`
	Repeat      int           `yaml:"repeat"`
	Workers     int           `yaml:"workers"`
	LogLevel    string        `yaml:"log_level"`
	Stats       struct {
		Backends      []string      `yaml:"backends"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		Prefix        string        `yaml:"prefix"`
		TTL           time.Duration `yaml:"ttl"`
		SQLitePath    string        `yaml:"sqlite_path"`
		MetricsAddr   string        `yaml:"metrics_addr"`
	} `yaml:"stats"`
}

func defaultConfig() config {
	return config{
		submitURL:     "https://ismp.crpt.ru/api/v3/lk/documents/create",
		httpTimeout:   30 * time.Second,
		repeat:        1,
		workers:       4,
		logLevel:      "info",
		statsBackends: []string{"memory"},
		statsPrefix:   "submitter:stats",
		statsTTL:      24 * time.Hour,
	}
}

// readConfig: defaults -> CONFIG_FILE (yaml) -> env -> validação.
func readConfig() (config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return config{}, err
		}
	}

	cfg.submitURL = getenvDefault("SUBMIT_URL", cfg.submitURL)
	cfg.rateLimit = getenvIntDefault("RATE_LIMIT", cfg.rateLimit)
	cfg.ratePeriod = getenvDurationDefault("RATE_PERIOD", cfg.ratePeriod)
	cfg.resetSchedule = getenvDefault("RATE_RESET_SCHEDULE", cfg.resetSchedule)
	cfg.acquireTimeout = getenvDurationDefault("ACQUIRE_TIMEOUT", cfg.acquireTimeout)
	cfg.httpTimeout = getenvDurationDefault("HTTP_TIMEOUT", cfg.httpTimeout)
	cfg.signature = getenvDefault("SIGNATURE", cfg.signature)
	cfg.repeat = getenvIntDefault("SUBMIT_REPEAT", cfg.repeat)
	cfg.workers = getenvIntDefault("SUBMIT_WORKERS", cfg.workers)
	cfg.logLevel = getenvDefault("LOG_LEVEL", cfg.logLevel)

	if v := os.Getenv("STATS_BACKEND"); v != "" {
		cfg.statsBackends = splitList(v)
	}
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", cfg.statsRedisAddr)
	cfg.statsRedisPassword = getenvDefault("STATS_REDIS_PASSWORD", cfg.statsRedisPassword)
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", cfg.statsRedisDB)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", cfg.statsPrefix)
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", cfg.statsTTL)
	cfg.statsSQLitePath = getenvDefault("STATS_SQLITE_PATH", cfg.statsSQLitePath)
	cfg.metricsAddr = getenvDefault("METRICS_ADDR", cfg.metricsAddr)

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	setString(&cfg.submitURL, fc.SubmitURL)
	setInt(&cfg.rateLimit, fc.Rate.Limit)
	setDuration(&cfg.ratePeriod, fc.Rate.Period)
	setString(&cfg.resetSchedule, fc.Rate.ResetSchedule)
	setDuration(&cfg.acquireTimeout, fc.Rate.AcquireTimeout)
	setDuration(&cfg.httpTimeout, fc.HTTPTimeout)
	setString(&cfg.signature, fc.Signature)
	setInt(&cfg.repeat, fc.Repeat)
	setInt(&cfg.workers, fc.Workers)
	setString(&cfg.logLevel, fc.LogLevel)
	if backends := normalizeList(fc.Stats.Backends); len(backends) > 0 {
		cfg.statsBackends = backends
	}
	setString(&cfg.statsRedisAddr, fc.Stats.RedisAddr)
	setString(&cfg.statsRedisPassword, fc.Stats.RedisPassword)
	setInt(&cfg.statsRedisDB, fc.Stats.RedisDB)
	setString(&cfg.statsPrefix, fc.Stats.Prefix)
	setDuration(&cfg.statsTTL, fc.Stats.TTL)
	setString(&cfg.statsSQLitePath, fc.Stats.SQLitePath)
	setString(&cfg.metricsAddr, fc.Stats.MetricsAddr)
	return nil
}

func (cfg config) validate() error {
	if strings.TrimSpace(cfg.submitURL) == "" {
		return errors.New("SUBMIT_URL is required")
	}
	if cfg.rateLimit <= 0 {
		return errors.New("RATE_LIMIT must be > 0")
	}
	if cfg.resetSchedule == "" && cfg.ratePeriod <= 0 {
		return errors.New("RATE_PERIOD must be > 0 (or set RATE_RESET_SCHEDULE)")
	}
	if cfg.repeat <= 0 {
		return errors.New("SUBMIT_REPEAT must be > 0")
	}
	if cfg.workers <= 0 {
		return errors.New("SUBMIT_WORKERS must be > 0")
	}
	for _, b := range cfg.statsBackends {
		switch b {
		case "memory", "prometheus":
		case "redis":
			if strings.TrimSpace(cfg.statsRedisAddr) == "" {
				return errors.New("STATS_REDIS_ADDR is required when STATS_BACKEND includes redis")
			}
		case "sqlite":
			if strings.TrimSpace(cfg.statsSQLitePath) == "" {
				return errors.New("STATS_SQLITE_PATH is required when STATS_BACKEND includes sqlite")
			}
		default:
			return fmt.Errorf("unknown STATS_BACKEND %q", b)
		}
	}
	return nil
}

func (cfg config) hasBackend(name string) bool {
	for _, b := range cfg.statsBackends {
		if b == name {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	return normalizeList(strings.Split(v, ","))
}

// normalizeList aplica trim + lower-case e descarta vazios (env e yaml passam por aqui).
func normalizeList(items []string) []string {
	var out []string
	for _, p := range items {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
