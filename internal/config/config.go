package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/jwaldner/optionroi/internal/optimizer"
)

// DefaultPath is the YAML file Load overlays on top of the environment.
const DefaultPath = "config.yaml"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// CacheConfig points at the Redis instance used to memoise optimize results.
// An empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLSeconds    int    `yaml:"ttl_seconds"`
}

// AuditConfig controls the per-request JSON audit files.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type Config struct {
	// Server settings
	Port string

	Logging   LoggingConfig
	Optimizer optimizer.Config
	Cache     CacheConfig
	Audit     AuditConfig
}

type YAMLConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Logging   LoggingConfig `yaml:"logging"`
	Optimizer struct {
		MaxIterations        int     `yaml:"max_iterations"`
		ConvergenceTolerance float64 `yaml:"convergence_tolerance"`
		InitialStepSize      float64 `yaml:"initial_step_size"`
		MinEntryPrice        float64 `yaml:"min_entry_price"`
		MaxStrikeRatio       float64 `yaml:"max_strike_ratio"`
		MaxExtraExpiry       float64 `yaml:"max_extra_expiry"`
	} `yaml:"optimizer"`
	Cache CacheConfig `yaml:"cache"`
	Audit struct {
		Enabled *bool  `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"audit"`
}

// Load reads .env (if present), the environment, and then config.yaml.
func Load() *Config {
	_ = godotenv.Load()
	return LoadFrom(DefaultPath)
}

// LoadFrom builds a Config from environment defaults overlaid with the YAML
// file at path. A missing or unreadable file leaves the defaults in place.
func LoadFrom(path string) *Config {
	defaults := optimizer.DefaultConfig()
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
			LogFile:  getEnv("LOG_FILE", "optionroi.log"),
		},
		Optimizer: optimizer.Config{
			MaxIterations:        getEnvInt("OPTIMIZER_MAX_ITERATIONS", defaults.MaxIterations),
			ConvergenceTolerance: getEnvFloat("OPTIMIZER_CONVERGENCE_TOLERANCE", defaults.ConvergenceTolerance),
			InitialStepSize:      getEnvFloat("OPTIMIZER_INITIAL_STEP_SIZE", defaults.InitialStepSize),
			MinEntryPrice:        getEnvFloat("OPTIMIZER_MIN_ENTRY_PRICE", defaults.MinEntryPrice),
			MaxStrikeRatio:       getEnvFloat("OPTIMIZER_MAX_STRIKE_RATIO", defaults.MaxStrikeRatio),
			MaxExtraExpiry:       getEnvFloat("OPTIMIZER_MAX_EXTRA_EXPIRY", defaults.MaxExtraExpiry),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 3600),
		},
		Audit: AuditConfig{
			Enabled: getEnvBool("AUDIT_ENABLED", false),
			Dir:     getEnv("AUDIT_DIR", "audits"),
		},
	}

	yamlCfg, err := loadYAMLConfig(path)
	if err != nil || yamlCfg == nil {
		return cfg
	}

	if yamlCfg.Server.Port != "" {
		cfg.Port = yamlCfg.Server.Port
	}

	if yamlCfg.Logging.LogLevel != "" {
		cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
	}
	if yamlCfg.Logging.LogFile != "" {
		cfg.Logging.LogFile = yamlCfg.Logging.LogFile
	}

	// Zero means "not set" for every optimizer key
	if yamlCfg.Optimizer.MaxIterations != 0 {
		cfg.Optimizer.MaxIterations = yamlCfg.Optimizer.MaxIterations
	}
	if yamlCfg.Optimizer.ConvergenceTolerance != 0 {
		cfg.Optimizer.ConvergenceTolerance = yamlCfg.Optimizer.ConvergenceTolerance
	}
	if yamlCfg.Optimizer.InitialStepSize != 0 {
		cfg.Optimizer.InitialStepSize = yamlCfg.Optimizer.InitialStepSize
	}
	if yamlCfg.Optimizer.MinEntryPrice != 0 {
		cfg.Optimizer.MinEntryPrice = yamlCfg.Optimizer.MinEntryPrice
	}
	if yamlCfg.Optimizer.MaxStrikeRatio != 0 {
		cfg.Optimizer.MaxStrikeRatio = yamlCfg.Optimizer.MaxStrikeRatio
	}
	if yamlCfg.Optimizer.MaxExtraExpiry != 0 {
		cfg.Optimizer.MaxExtraExpiry = yamlCfg.Optimizer.MaxExtraExpiry
	}

	if yamlCfg.Cache.RedisAddr != "" {
		cfg.Cache.RedisAddr = yamlCfg.Cache.RedisAddr
	}
	if yamlCfg.Cache.RedisPassword != "" {
		cfg.Cache.RedisPassword = yamlCfg.Cache.RedisPassword
	}
	if yamlCfg.Cache.RedisDB != 0 {
		cfg.Cache.RedisDB = yamlCfg.Cache.RedisDB
	}
	if yamlCfg.Cache.TTLSeconds != 0 {
		cfg.Cache.TTLSeconds = yamlCfg.Cache.TTLSeconds
	}

	if yamlCfg.Audit.Enabled != nil {
		cfg.Audit.Enabled = *yamlCfg.Audit.Enabled
	}
	if yamlCfg.Audit.Dir != "" {
		cfg.Audit.Dir = yamlCfg.Audit.Dir
	}

	return cfg
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port is empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: port %q is not a number", c.Port)
	}
	switch c.Logging.LogLevel {
	case "debug", "verbose", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.LogLevel)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("config: optimizer: %w", err)
	}
	if c.Cache.RedisAddr != "" && c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("config: cache ttl must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.Audit.Enabled && c.Audit.Dir == "" {
		return fmt.Errorf("config: audit enabled without a directory")
	}
	return nil
}

func loadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var yamlCfg YAMLConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &yamlCfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
