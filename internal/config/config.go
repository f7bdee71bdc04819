package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	ErrMissingMongoURI    = errors.New("MONGODB_URI is required for the mongo driver")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres driver")
	ErrUnknownDriver      = errors.New("DB_DRIVER must be one of: mongo, postgres, memory")
	ErrInvalidPoolSize    = errors.New("DB_MAX_POOL_SIZE must be at least 1")
)

type Config struct {
	Env          string   `yaml:"env"`
	LogLevel     string   `yaml:"log_level"`
	OpsPort      int      `yaml:"ops_port"`
	OTLPEndpoint string   `yaml:"otlp_endpoint"`
	DB           DBConfig `yaml:"database"`
}

type DBConfig struct {
	Driver        string `yaml:"driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	PostgresURL   string `yaml:"postgres_url"`

	MaxPoolSize            int           `yaml:"max_pool_size"`
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout"`
	SocketIdleTimeout      time.Duration `yaml:"socket_idle_timeout"`
	// when false, store calls issued before the connection is up fail
	// immediately instead of waiting
	BufferCommands bool `yaml:"buffer_commands"`
}

func defaults() Config {
	return Config{
		Env:     "dev",
		OpsPort: 9090,
		DB: DBConfig{
			Driver:                 DriverMongo,
			MongoDatabase:          "eventbooking",
			MaxPoolSize:            10,
			ServerSelectionTimeout: 5 * time.Second,
			SocketIdleTimeout:      45 * time.Second,
		},
	}
}

// Load reads defaults, then the YAML file named by CONFIG_FILE if set, then
// environment variables (a .env file is loaded first when present). A
// missing connection string for the selected driver is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		err := loadFile(path, &cfg)
		if err != nil {
			return Config{}, err
		}
	}

	err := applyEnv(&cfg)
	if err != nil {
		return Config{}, err
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(raw, cfg)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.DB.Driver = getEnv("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.MongoURI = getEnv("MONGODB_URI", cfg.DB.MongoURI)
	cfg.DB.MongoDatabase = getEnv("MONGODB_DATABASE", cfg.DB.MongoDatabase)
	cfg.DB.PostgresURL = getEnv("DATABASE_URL", cfg.DB.PostgresURL)

	var err error

	if cfg.OpsPort, err = getEnvInt("OPS_PORT", cfg.OpsPort); err != nil {
		return err
	}
	if cfg.DB.MaxPoolSize, err = getEnvInt("DB_MAX_POOL_SIZE", cfg.DB.MaxPoolSize); err != nil {
		return err
	}
	if cfg.DB.ServerSelectionTimeout, err = getEnvDuration("DB_SERVER_SELECTION_TIMEOUT", cfg.DB.ServerSelectionTimeout); err != nil {
		return err
	}
	if cfg.DB.SocketIdleTimeout, err = getEnvDuration("DB_SOCKET_IDLE_TIMEOUT", cfg.DB.SocketIdleTimeout); err != nil {
		return err
	}
	if cfg.DB.BufferCommands, err = getEnvBool("DB_BUFFER_COMMANDS", cfg.DB.BufferCommands); err != nil {
		return err
	}

	return nil
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverMongo:
		if c.DB.MongoURI == "" {
			return ErrMissingMongoURI
		}
	case DriverPostgres:
		if c.DB.PostgresURL == "" {
			return ErrMissingDatabaseURL
		}
	case DriverMemory:
	default:
		return ErrUnknownDriver
	}

	if c.DB.MaxPoolSize < 1 {
		return ErrInvalidPoolSize
	}
	return nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	num, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return num, nil
}

// accepts Go durations ("5s") or bare milliseconds ("5000")
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
