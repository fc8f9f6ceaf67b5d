package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	AI       AIConfig       `yaml:"ai"`
	Matching MatchingConfig `yaml:"matching"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"`
	TokenSecret string `yaml:"token_secret"`
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

type AIConfig struct {
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	EmbedModel    string        `yaml:"embed_model"`
	ReasonModel   string        `yaml:"reason_model"`
	EmbedTimeout  time.Duration `yaml:"embed_timeout"`
	ReasonTimeout time.Duration `yaml:"reason_timeout"`
}

type MatchingConfig struct {
	// Overfetch is how many ranked candidates the vector query returns
	// before exclusion filtering. Must stay well above any realistic
	// page size plus exclusion-set size so pages never under-fill.
	Overfetch       int `yaml:"overfetch"`
	ReasonLimit     int `yaml:"reason_limit"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	DefaultHideDays int `yaml:"default_hide_days"`
	WorkerCount     int `yaml:"worker_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

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
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "gemini-embedding-001"
	}
	if cfg.AI.ReasonModel == "" {
		cfg.AI.ReasonModel = "gemini-2.0-flash"
	}
	if cfg.AI.EmbedTimeout == 0 {
		cfg.AI.EmbedTimeout = 15 * time.Second
	}
	if cfg.AI.ReasonTimeout == 0 {
		cfg.AI.ReasonTimeout = 10 * time.Second
	}
	if cfg.Matching.Overfetch == 0 {
		cfg.Matching.Overfetch = 500
	}
	if cfg.Matching.ReasonLimit == 0 {
		cfg.Matching.ReasonLimit = 5
	}
	if cfg.Matching.DefaultPageSize == 0 {
		cfg.Matching.DefaultPageSize = 20
	}
	if cfg.Matching.MaxPageSize == 0 {
		cfg.Matching.MaxPageSize = 100
	}
	if cfg.Matching.DefaultHideDays == 0 {
		cfg.Matching.DefaultHideDays = 30
	}
	if cfg.Matching.WorkerCount == 0 {
		cfg.Matching.WorkerCount = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MATCH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MATCH_ADMIN_API_KEY"); v != "" {
		cfg.Server.AdminAPIKey = v
	}
	if v := os.Getenv("MATCH_TOKEN_SECRET"); v != "" {
		cfg.Server.TokenSecret = v
	}
	if v := os.Getenv("MATCH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("MATCH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("MATCH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("MATCH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("MATCH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MATCH_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("MATCH_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("MATCH_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("MATCH_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("MATCH_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("MATCH_GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("MATCH_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Matching.WorkerCount = n
		}
	}
}
