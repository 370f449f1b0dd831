package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mart_inventory/internal/database"
	"mart_inventory/pkg/utils"
)

// ServerConfig configures the remote store service.
type ServerConfig struct {
	Host                 string
	Port                 string
	DBDriver             string
	DatabaseDSN          string
	CORSOrigins          []string
	SharedSecret         string
	TransactionReadLimit int
	LogLevel             string
	LogFile              string
	GinDebug             bool
}

// Addr is the listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LoadServer reads the server configuration from the environment.
func LoadServer() *ServerConfig {
	cfg := &ServerConfig{
		Host:                 utils.Getenv("HOST", "127.0.0.1"),
		Port:                 utils.Getenv("PORT", "5000"),
		DBDriver:             strings.ToLower(utils.Getenv("DB_DRIVER", database.DriverSQLite)),
		CORSOrigins:          utils.SplitList(utils.Getenv("CORS_ALLOWED_ORIGINS", "*")),
		SharedSecret:         utils.Getenv("SYNC_SHARED_SECRET", ""),
		TransactionReadLimit: utils.GetenvInt("TRANSACTION_READ_LIMIT", 5000),
		LogLevel:             utils.Getenv("LOG_LEVEL", "info"),
		LogFile:              utils.Getenv("LOG_FILE", ""),
		GinDebug:             utils.GetenvBool("GIN_DEBUG", false),
	}

	cfg.DatabaseDSN = utils.Getenv("DATABASE_DSN", "")
	if cfg.DatabaseDSN == "" {
		if cfg.DBDriver == database.DriverPostgres {
			cfg.DatabaseDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				utils.Getenv("DB_HOST", "localhost"),
				utils.Getenv("DB_PORT", "5432"),
				utils.Getenv("DB_USER", "mart_user"),
				utils.Getenv("DB_PASSWORD", "mart_password"),
				utils.Getenv("DB_NAME", "mart_inventory"),
				utils.Getenv("DB_SSLMODE", "disable"),
			)
		} else {
			cfg.DatabaseDSN = "./inventory.db"
		}
	}

	if cfg.SharedSecret != "" && len(cfg.SharedSecret) < 16 {
		utils.LogWarn(nil, "SYNC_SHARED_SECRET is shorter than 16 characters")
	}
	return cfg
}

// ClientConfig configures martctl and the persistence layer it drives.
type ClientConfig struct {
	DataFile      string        `yaml:"data_file"`
	APIEndpoint   string        `yaml:"api_endpoint"`
	SharedSecret  string        `yaml:"shared_secret"`
	SaveDelay     time.Duration `yaml:"save_delay"`
	HealthTimeout time.Duration `yaml:"health_timeout"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	PushTimeout   time.Duration `yaml:"push_timeout"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
}

// DefaultClientConfig returns the built-in client defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		DataFile:      "./mart.db",
		SaveDelay:     time.Second,
		HealthTimeout: 2 * time.Second,
		FetchTimeout:  10 * time.Second,
		PushTimeout:   10 * time.Second,
		LogLevel:      "warn",
	}
}

// LoadClient builds the client configuration: defaults, then the YAML file at
// path when given, then environment variables.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.DataFile = utils.Getenv("MART_DATA_FILE", cfg.DataFile)
	cfg.APIEndpoint = utils.Getenv("MART_API_ENDPOINT", cfg.APIEndpoint)
	cfg.SharedSecret = utils.Getenv("MART_SHARED_SECRET", cfg.SharedSecret)
	cfg.SaveDelay = utils.GetenvDuration("MART_SAVE_DELAY", cfg.SaveDelay)
	cfg.HealthTimeout = utils.GetenvDuration("MART_HEALTH_TIMEOUT", cfg.HealthTimeout)
	cfg.FetchTimeout = utils.GetenvDuration("MART_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.PushTimeout = utils.GetenvDuration("MART_PUSH_TIMEOUT", cfg.PushTimeout)
	cfg.LogLevel = utils.Getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = utils.Getenv("LOG_FILE", cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *ClientConfig) Validate() error {
	var errs []error
	if c.DataFile == "" {
		errs = append(errs, errors.New("data_file must not be empty"))
	}
	if c.SaveDelay < 0 {
		errs = append(errs, errors.New("save_delay must not be negative"))
	}
	for name, d := range map[string]time.Duration{
		"health_timeout": c.HealthTimeout,
		"fetch_timeout":  c.FetchTimeout,
		"push_timeout":   c.PushTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}
