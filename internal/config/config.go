package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Auditor   AuditorConfig   `yaml:"auditor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	CookieSecure bool          `yaml:"cookie_secure"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	MetricsPort  int           `yaml:"metrics_port"`
}

// UpstreamConfig points at the parts-history backend.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type DashboardConfig struct {
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	DefaultLimit     int           `yaml:"default_limit"`
	ModelPageLimit   int           `yaml:"model_page_limit"`
	SubpartPageLimit int           `yaml:"subpart_page_limit"`
	CustomerLimit    int           `yaml:"customer_limit"`
	DefaultReason    string        `yaml:"default_reason"`
	WorkspaceIdleTTL time.Duration `yaml:"workspace_idle_ttl"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuditorConfig struct {
	Consumer    string `yaml:"consumer"`
	WorkerCount int    `yaml:"worker_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadEnv loads .env files into the environment before Load applies overrides.
// Missing files are not an error.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, then applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 8082
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:3005"
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 5 * time.Second
	}
	if cfg.Dashboard.SearchDebounce == 0 {
		cfg.Dashboard.SearchDebounce = time.Second
	}
	if cfg.Dashboard.DefaultLimit == 0 {
		cfg.Dashboard.DefaultLimit = 10
	}
	if cfg.Dashboard.ModelPageLimit == 0 {
		cfg.Dashboard.ModelPageLimit = 10
	}
	if cfg.Dashboard.SubpartPageLimit == 0 {
		cfg.Dashboard.SubpartPageLimit = 100
	}
	if cfg.Dashboard.CustomerLimit == 0 {
		cfg.Dashboard.CustomerLimit = 100
	}
	if cfg.Dashboard.DefaultReason == "" {
		cfg.Dashboard.DefaultReason = "부품 상태 수정"
	}
	if cfg.Dashboard.WorkspaceIdleTTL == 0 {
		cfg.Dashboard.WorkspaceIdleTTL = 30 * time.Minute
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "parts-history"
	}
	if cfg.Auditor.Consumer == "" {
		cfg.Auditor.Consumer = "auditor"
	}
	if cfg.Auditor.WorkerCount == 0 {
		cfg.Auditor.WorkerCount = 2
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PB_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.CookieSecure = b
		}
	}
	if v := os.Getenv("PB_UPSTREAM_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("PB_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	if v := os.Getenv("PB_SEARCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.SearchDebounce = d
		}
	}
	if v := os.Getenv("PB_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PB_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PB_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PB_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PB_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PB_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("PB_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("PB_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("PB_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("PB_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("PB_AUDITOR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auditor.WorkerCount = n
		}
	}
	if v := os.Getenv("PB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
