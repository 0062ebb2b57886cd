package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwaldner/optionroi/internal/optimizer"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsWithoutYAML(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "REDIS_ADDR", "AUDIT_ENABLED", "OPTIMIZER_MAX_ITERATIONS"} {
		t.Setenv(key, "")
	}
	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Optimizer != optimizer.DefaultConfig() {
		t.Errorf("Expected default optimizer config, got %+v", cfg.Optimizer)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Errorf("Expected caching disabled by default, got %q", cfg.Cache.RedisAddr)
	}
	if cfg.Audit.Enabled {
		t.Errorf("Expected audit disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPTIMIZER_MAX_ITERATIONS", "250")
	t.Setenv("OPTIMIZER_CONVERGENCE_TOLERANCE", "1e-6")
	t.Setenv("OPTIMIZER_MAX_EXTRA_EXPIRY", "0.75")
	t.Setenv("AUDIT_ENABLED", "true")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090 from env, got %s", cfg.Port)
	}
	if cfg.Optimizer.MaxIterations != 250 {
		t.Errorf("Expected 250 iterations from env, got %d", cfg.Optimizer.MaxIterations)
	}
	if cfg.Optimizer.ConvergenceTolerance != 1e-6 {
		t.Errorf("Expected tolerance 1e-6 from env, got %v", cfg.Optimizer.ConvergenceTolerance)
	}
	if cfg.Optimizer.MaxExtraExpiry != 0.75 {
		t.Errorf("Expected extra expiry 0.75 from env, got %v", cfg.Optimizer.MaxExtraExpiry)
	}
	if !cfg.Audit.Enabled {
		t.Errorf("Expected audit enabled from env")
	}
}

func TestYAMLOverlay(t *testing.T) {
	t.Setenv("PORT", "9090")
	path := writeYAML(t, `
server:
  port: "7070"
logging:
  log_level: debug
  log_file: ""
optimizer:
  max_iterations: 1200
  initial_step_size: 0.5
  max_strike_ratio: 6
cache:
  redis_addr: localhost:6379
  ttl_seconds: 60
audit:
  enabled: false
  dir: /tmp/audits
`)

	cfg := LoadFrom(path)

	if cfg.Port != "7070" {
		t.Errorf("Expected YAML port to win over env, got %s", cfg.Port)
	}
	if cfg.Logging.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.Logging.LogLevel)
	}
	if cfg.Optimizer.MaxIterations != 1200 || cfg.Optimizer.InitialStepSize != 0.5 {
		t.Errorf("Optimizer overlay not applied: %+v", cfg.Optimizer)
	}
	if cfg.Optimizer.MaxStrikeRatio != 6 {
		t.Errorf("Expected strike ratio 6 from YAML, got %v", cfg.Optimizer.MaxStrikeRatio)
	}
	if cfg.Optimizer.MaxExtraExpiry != optimizer.DefaultConfig().MaxExtraExpiry {
		t.Errorf("Unset YAML key should keep default extra expiry, got %v", cfg.Optimizer.MaxExtraExpiry)
	}
	if cfg.Optimizer.ConvergenceTolerance != optimizer.DefaultConfig().ConvergenceTolerance {
		t.Errorf("Unset YAML key should keep default tolerance, got %v", cfg.Optimizer.ConvergenceTolerance)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.TTLSeconds != 60 {
		t.Errorf("Cache overlay not applied: %+v", cfg.Cache)
	}
	if cfg.Audit.Enabled || cfg.Audit.Dir != "/tmp/audits" {
		t.Errorf("Audit overlay not applied: %+v", cfg.Audit)
	}
}

func TestYAMLCanDisableAuditEnabledByEnv(t *testing.T) {
	t.Setenv("AUDIT_ENABLED", "true")
	cfg := LoadFrom(writeYAML(t, "audit:\n  enabled: false\n"))
	if cfg.Audit.Enabled {
		t.Errorf("Expected YAML to disable audit")
	}
}

func TestMalformedYAMLKeepsDefaults(t *testing.T) {
	cfg := LoadFrom(writeYAML(t, "optimizer: [this is not a map"))
	if cfg.Optimizer != optimizer.DefaultConfig() {
		t.Errorf("Expected defaults after parse failure, got %+v", cfg.Optimizer)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"non-numeric port", func(c *Config) { c.Port = "http" }},
		{"unknown level", func(c *Config) { c.Logging.LogLevel = "loud" }},
		{"zero iterations", func(c *Config) { c.Optimizer.MaxIterations = 0 }},
		{"negative step", func(c *Config) { c.Optimizer.InitialStepSize = -1 }},
		{"strike ratio below one", func(c *Config) { c.Optimizer.MaxStrikeRatio = 0.5 }},
		{"zero extra expiry", func(c *Config) { c.Optimizer.MaxExtraExpiry = 0 }},
		{"cache without ttl", func(c *Config) { c.Cache.RedisAddr = "localhost:6379"; c.Cache.TTLSeconds = 0 }},
		{"audit without dir", func(c *Config) { c.Audit.Enabled = true; c.Audit.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}
