package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverBadger   = "badger"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Badger      BadgerConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	Chat        ChatConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	DSN             string
	MaxConnections  int
	MaxIdleTime     time.Duration
	ConnMaxLifetime time.Duration
	Migrate         bool
}

type BadgerConfig struct {
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type ChatConfig struct {
	BroadcastTarget  string
	SweepInterval    time.Duration
	HeartbeatTimeout time.Duration
	SweepItemTimeout time.Duration
	SweepConcurrency int
	DefaultLimit     int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 5000)),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", getEnv("DATABASE_URL", "")),
			MaxConnections:  getEnvAsInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdleTime:     getEnvAsDuration("DATABASE_MAX_IDLE_TIME", 5*time.Minute),
			ConnMaxLifetime: getEnvAsDuration("DATABASE_CONN_MAX_LIFETIME", 1*time.Hour),
			Migrate:         getEnvAsBool("DATABASE_MIGRATE", true),
		},
		Badger: BadgerConfig{
			Path: getEnv("BADGER_PATH", "./data/badger"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Chat: ChatConfig{
			BroadcastTarget:  getEnv("CHAT_BROADCAST_TARGET", "Todos"),
			SweepInterval:    getEnvAsDuration("CHAT_SWEEP_INTERVAL", 15*time.Second),
			HeartbeatTimeout: getEnvAsDuration("CHAT_HEARTBEAT_TIMEOUT", 10*time.Second),
			SweepItemTimeout: getEnvAsDuration("CHAT_SWEEP_ITEM_TIMEOUT", 5*time.Second),
			SweepConcurrency: getEnvAsInt("CHAT_SWEEP_CONCURRENCY", 8),
			DefaultLimit:     getEnvAsInt("CHAT_DEFAULT_LIMIT", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN must be set for the postgres driver")
		}
	case StorageDriverBadger:
		if c.Badger.Path == "" {
			return fmt.Errorf("badger path must be set for the badger driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Chat.BroadcastTarget == "" {
		return fmt.Errorf("broadcast target must not be empty")
	}
	if c.Chat.SweepInterval <= 0 || c.Chat.HeartbeatTimeout <= 0 {
		return fmt.Errorf("sweep interval and heartbeat timeout must be positive")
	}
	if c.Chat.SweepItemTimeout <= 0 {
		return fmt.Errorf("sweep item timeout must be positive")
	}
	if c.Chat.SweepConcurrency <= 0 {
		return fmt.Errorf("sweep concurrency must be positive")
	}
	if c.Chat.DefaultLimit < 0 {
		return fmt.Errorf("default limit must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
