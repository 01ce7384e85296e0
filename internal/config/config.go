package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/classifystack/drift-engine/internal/store"
)

// Config captures the settings required to boot the drift engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Database store.Config   `yaml:"database"`
	Alerting AlertingConfig `yaml:"alerting"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// MonitorConfig controls windowing and thresholds for drift analysis.
type MonitorConfig struct {
	InferenceLogPath      string        `yaml:"inferenceLogPath"`
	ReferenceWindowDays   int           `yaml:"referenceWindowDays"`
	CurrentWindowDays     int           `yaml:"currentWindowDays"`
	MinSamplesForAnalysis int           `yaml:"minSamplesForAnalysis"`
	Bins                  int           `yaml:"bins"`
	WarningThreshold      float64       `yaml:"warningThreshold"`
	AlertThreshold        float64       `yaml:"alertThreshold"`
	CriticalThreshold     float64       `yaml:"criticalThreshold"`
	ScheduleInterval      time.Duration `yaml:"scheduleInterval"`
	RunTimeout            time.Duration `yaml:"runTimeout"`
}

// AlertingConfig controls playbook loading for recommended actions.
type AlertingConfig struct {
	PlaybookPath string `yaml:"playbookPath"`
}

// CacheConfig controls Valkey-backed caching of query endpoints.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	TLS          bool          `yaml:"tls"`
	QueryTTL     time.Duration `yaml:"queryTTL"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DRIFT_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8300",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Monitor: MonitorConfig{
			InferenceLogPath:      "logs/inference_log.csv",
			ReferenceWindowDays:   30,
			CurrentWindowDays:     7,
			MinSamplesForAnalysis: 100,
			Bins:                  10,
			WarningThreshold:      0.1,
			AlertThreshold:        0.2,
			CriticalThreshold:     0.3,
			ScheduleInterval:      0,
			RunTimeout:            30 * time.Second,
		},
		Database: store.Config{
			Host:         "localhost",
			Port:         5432,
			Name:         "drift_monitoring",
			User:         "postgres",
			SSLMode:      "disable",
			ConnTimeout:  5 * time.Second,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Alerting: AlertingConfig{},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			QueryTTL:     30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DRIFT_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("DRIFT_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("DRIFT_ENGINE_INFERENCE_LOG"); v != "" {
		cfg.Monitor.InferenceLogPath = v
	}
	if v := os.Getenv("DRIFT_ENGINE_SCHEDULE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitor.ScheduleInterval = d
		}
	}
	if v := os.Getenv("DRIFT_ENGINE_MIN_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.MinSamplesForAnalysis = n
		}
	}
	if v := os.Getenv("DRIFT_ENGINE_WARNING_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Monitor.WarningThreshold = f
		}
	}
	if v := os.Getenv("DRIFT_ENGINE_ALERT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Monitor.AlertThreshold = f
		}
	}
	if v := os.Getenv("DRIFT_ENGINE_CRITICAL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Monitor.CriticalThreshold = f
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_SSL_MODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("DRIFT_ENGINE_PLAYBOOK_PATH"); v != "" {
		cfg.Alerting.PlaybookPath = v
	}
	if v := os.Getenv("DRIFT_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DRIFT_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_TLS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("DRIFT_ENGINE_CACHE_QUERY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.QueryTTL = d
		}
	}
}
