package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/vetting-tracker/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	OCR      OCRConfig      `yaml:"ocr"`
	LLM      LLMConfig      `yaml:"llm"`
	Matching MatchingConfig `yaml:"matching"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// DriverName returns the configured driver, inferring it from the DSN when unset.
func (d DatabaseConfig) DriverName() string {
	if d.Driver != "" {
		return strings.ToLower(d.Driver)
	}
	if strings.HasPrefix(d.DSN, "postgres://") || strings.HasPrefix(d.DSN, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
}

// OCRConfig holds OCR service configuration
type OCRConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Temperature   float32       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"`
	FinancePrompt string        `yaml:"finance_prompt"`
}

// MatchingConfig bounds how many rows the case matcher scans.
type MatchingConfig struct {
	FlowScanWindow     int `yaml:"flow_scan_window"`
	ApprovalScanWindow int `yaml:"approval_scan_window"`
}

// IngestConfig configures watch-folder ingestion. Empty dirs disable watching.
type IngestConfig struct {
	FinanceDir     string        `yaml:"finance_dir"`
	ApprovalDir    string        `yaml:"approval_dir"`
	Debounce       time.Duration `yaml:"debounce"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
}

// ArchiveConfig configures the source-document object store.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// AuthConfig holds HTTP auth settings. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
			HTTPAddr: ":3000",
		},
		OCR: OCRConfig{
			BaseURL:    "http://localhost:8000",
			Timeout:    120 * time.Second,
			RetryCount: 1,
		},
		LLM: LLMConfig{
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
			Timeout: 45 * time.Second,
		},
		Matching: MatchingConfig{
			FlowScanWindow:     constants.DefaultFlowScanWindow,
			ApprovalScanWindow: constants.DefaultApprovalScanWindow,
		},
		Ingest: IngestConfig{
			Debounce:       500 * time.Millisecond,
			Workers:        2,
			QueueSize:      100,
			ProcessTimeout: 5 * time.Minute,
		},
		Archive: ArchiveConfig{
			Bucket: "vetting-documents",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig builds the configuration from defaults, then the optional YAML
// file at path, then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, NewAppError("CONFIG_ERROR", "read config file", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, NewAppError("CONFIG_ERROR", "parse config file", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)

	c.OCR.BaseURL = getEnv("OCR_BASE_URL", c.OCR.BaseURL)
	c.OCR.Timeout = getEnvAsDuration("OCR_TIMEOUT", c.OCR.Timeout)
	c.OCR.RetryCount = getEnvAsInt("OCR_RETRY_COUNT", c.OCR.RetryCount)

	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = getEnvAsFloat32("OPENAI_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("OPENAI_TIMEOUT", c.LLM.Timeout)
	c.LLM.FinancePrompt = getEnv("FINANCE_PROMPT", c.LLM.FinancePrompt)

	c.Matching.FlowScanWindow = getEnvAsInt("FLOW_SCAN_WINDOW", c.Matching.FlowScanWindow)
	c.Matching.ApprovalScanWindow = getEnvAsInt("APPROVAL_SCAN_WINDOW", c.Matching.ApprovalScanWindow)

	c.Ingest.FinanceDir = getEnv("INGEST_FINANCE_DIR", c.Ingest.FinanceDir)
	c.Ingest.ApprovalDir = getEnv("INGEST_APPROVAL_DIR", c.Ingest.ApprovalDir)
	c.Ingest.Debounce = getEnvAsDuration("INGEST_DEBOUNCE", c.Ingest.Debounce)
	c.Ingest.Workers = getEnvAsInt("INGEST_WORKERS", c.Ingest.Workers)
	c.Ingest.QueueSize = getEnvAsInt("INGEST_QUEUE_SIZE", c.Ingest.QueueSize)
	c.Ingest.ProcessTimeout = getEnvAsDuration("INGEST_PROCESS_TIMEOUT", c.Ingest.ProcessTimeout)

	c.Archive.Enabled = getEnvAsBool("ARCHIVE_ENABLED", c.Archive.Enabled)
	c.Archive.Endpoint = getEnv("ARCHIVE_ENDPOINT", c.Archive.Endpoint)
	c.Archive.AccessKey = getEnv("ARCHIVE_ACCESS_KEY", c.Archive.AccessKey)
	c.Archive.SecretKey = getEnv("ARCHIVE_SECRET_KEY", c.Archive.SecretKey)
	c.Archive.Bucket = getEnv("ARCHIVE_BUCKET", c.Archive.Bucket)
	c.Archive.UseSSL = getEnvAsBool("ARCHIVE_USE_SSL", c.Archive.UseSSL)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for the server.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if d := c.Database.DriverName(); d != "postgres" && d != "sqlite" {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported database driver %q", d), ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Matching.FlowScanWindow <= 0 || c.Matching.ApprovalScanWindow <= 0 {
		return NewAppError("CONFIG_ERROR", "scan windows must be positive", ErrInvalidInput)
	}
	if c.Archive.Enabled && (c.Archive.Endpoint == "" || c.Archive.Bucket == "") {
		return NewAppError("CONFIG_ERROR", "archive endpoint and bucket are required when archiving is enabled", ErrInvalidInput)
	}
	if (c.Ingest.FinanceDir != "" || c.Ingest.ApprovalDir != "") && c.Ingest.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "ingest workers must be positive", ErrInvalidInput)
	}
	return nil
}

// ValidateExtraction checks what the ingestion path needs on top of Validate.
func (c *Config) ValidateExtraction() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.OCR.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "OCR_BASE_URL is required", ErrInvalidInput)
	}
	return nil
}
