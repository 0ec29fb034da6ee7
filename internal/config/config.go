package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`

	Backend struct {
		BaseURL          string        `yaml:"base_url"`
		Timeout          time.Duration `yaml:"timeout"`
		PollInterval     time.Duration `yaml:"poll_interval"`
		TransportRetries int           `yaml:"transport_retries"`
	} `yaml:"backend"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
		Migrate  bool   `yaml:"migrate"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`

	Auth struct {
		APIKeys []string `yaml:"api_keys"`
	} `yaml:"auth"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`

	Logger struct {
		Level      string `yaml:"level"`
		JSON       bool   `yaml:"json"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
	} `yaml:"logger"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decode YAML lalu isi default + override env
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default config when no file is present
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

// Path resolves the config file location, CONFIG_PATH wins.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCA_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("SCA_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:5000"
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 30 * time.Second
	}
	if c.Backend.PollInterval <= 0 {
		c.Backend.PollInterval = 1000 * time.Millisecond
	}
	if c.Backend.TransportRetries < 0 {
		c.Backend.TransportRetries = 0
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case DriverMySQL:
			c.Database.Port = 3306
		case DriverPostgres:
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "sca-corrections"
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 60
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.MaxSize == 0 {
		c.Logger.MaxSize = 100
	}
	if c.Logger.MaxBackups == 0 {
		c.Logger.MaxBackups = 3
	}
	if c.Logger.MaxAge == 0 {
		c.Logger.MaxAge = 28
	}
}

// Validate cek nilai yang tidak bisa di-default
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	return nil
}

// ExportEnabled MinIO dipakai kalau endpoint diisi
func (c *Config) ExportEnabled() bool { return c.Minio.Endpoint != "" }

// EnrichmentEnabled OpenAI dipakai kalau api key diisi
func (c *Config) EnrichmentEnabled() bool { return c.OpenAI.APIKey != "" }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres (lib/pq URL form)
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": []string{c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}
