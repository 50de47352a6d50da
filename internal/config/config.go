package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	APIBaseURL string        `yaml:"api_base_url"`
	APITimeout time.Duration `yaml:"api_timeout"`

	TokenStore  string        `yaml:"token_store"`
	SessionFile string        `yaml:"session_file"`
	SessionTTL  time.Duration `yaml:"session_ttl"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	NATSURL         string        `yaml:"nats_url"`
	NATSConnTimeout time.Duration `yaml:"nats_conn_timeout"`
	AuditSubject    string        `yaml:"audit_subject"`

	ClickHouseDSN          string        `yaml:"clickhouse_dsn"`
	ClickHouseMaxOpenConns int           `yaml:"clickhouse_max_open_conns"`
	ClickHouseMaxIdleConns int           `yaml:"clickhouse_max_idle_conns"`
	ClickHouseConnMaxLife  time.Duration `yaml:"clickhouse_conn_max_life"`
	ClickHouseUsername     string        `yaml:"clickhouse_username"`
	ClickHousePassword     string        `yaml:"clickhouse_password"`
	ClickHouseDatabase     string        `yaml:"clickhouse_database"`

	OTELCollectorURL string `yaml:"otel_collector_url"`

	GatewayAddr       string        `yaml:"gateway_addr"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	BulkDeleteWorkers int           `yaml:"bulk_delete_workers"`
	ExportDir         string        `yaml:"export_dir"`
	LogLevel          string        `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		APIBaseURL: "http://localhost:5000/api",
		APITimeout: 10 * time.Second,

		TokenStore: TokenStoreFile,
		SessionTTL: 7 * 24 * time.Hour,

		RedisAddr: "localhost:6379",

		NATSConnTimeout: 10 * time.Second,
		AuditSubject:    "jobboard.audit",

		ClickHouseMaxOpenConns: 10,
		ClickHouseMaxIdleConns: 5,
		ClickHouseConnMaxLife:  time.Hour,
		ClickHouseUsername:     "default",
		ClickHouseDatabase:     "jobboard",

		GatewayAddr:       ":3000",
		SweepInterval:     time.Hour,
		BulkDeleteWorkers: 5,
		ExportDir:         ".",
		LogLevel:          "info",
	}
}

// LoadConfig reads .env (if present), then the YAML file named by
// JOBBOARD_CONFIG (if set), then environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := Default()
	if path := os.Getenv("JOBBOARD_CONFIG"); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getEnvString("JOBBOARD_API_URL", c.APIBaseURL)
	c.APITimeout = getEnvDuration("JOBBOARD_API_TIMEOUT", c.APITimeout)

	c.TokenStore = getEnvString("JOBBOARD_TOKEN_STORE", c.TokenStore)
	c.SessionFile = getEnvString("JOBBOARD_SESSION_FILE", c.SessionFile)
	c.SessionTTL = getEnvDuration("JOBBOARD_SESSION_TTL", c.SessionTTL)

	c.RedisAddr = getEnvString("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnvString("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)

	c.NATSURL = getEnvString("NATS_URL", c.NATSURL)
	c.NATSConnTimeout = getEnvDuration("NATS_CONN_TIMEOUT", c.NATSConnTimeout)
	c.AuditSubject = getEnvString("JOBBOARD_AUDIT_SUBJECT", c.AuditSubject)

	c.ClickHouseDSN = getEnvString("CLICKHOUSE_DSN", c.ClickHouseDSN)
	c.ClickHouseMaxOpenConns = getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", c.ClickHouseMaxOpenConns)
	c.ClickHouseMaxIdleConns = getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", c.ClickHouseMaxIdleConns)
	c.ClickHouseConnMaxLife = getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", c.ClickHouseConnMaxLife)
	c.ClickHouseUsername = getEnvString("CLICKHOUSE_USERNAME", c.ClickHouseUsername)
	c.ClickHousePassword = getEnvString("CLICKHOUSE_PASSWORD", c.ClickHousePassword)
	c.ClickHouseDatabase = getEnvString("CLICKHOUSE_DATABASE", c.ClickHouseDatabase)

	c.OTELCollectorURL = getEnvString("OTEL_COLLECTOR_URL", c.OTELCollectorURL)

	c.GatewayAddr = getEnvString("JOBBOARD_GATEWAY_ADDR", c.GatewayAddr)
	c.SweepInterval = getEnvDuration("JOBBOARD_SWEEP_INTERVAL", c.SweepInterval)
	c.BulkDeleteWorkers = getEnvInt("JOBBOARD_BULK_DELETE_WORKERS", c.BulkDeleteWorkers)
	c.ExportDir = getEnvString("JOBBOARD_EXPORT_DIR", c.ExportDir)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api base url must be http(s): %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreRedis, TokenStoreMemory:
	default:
		return fmt.Errorf("unknown token store %q", c.TokenStore)
	}
	if c.BulkDeleteWorkers <= 0 {
		return fmt.Errorf("bulk delete workers must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
