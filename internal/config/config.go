package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port            string        `env:"PORT" envDefault:"7001"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	StoreBackend    string `env:"STORE_BACKEND" envDefault:"mongo"`
	MongoURI        string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB         string `env:"MONGO_DB" envDefault:"auth_server"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"users"`
	PostgresDSN     string `env:"POSTGRES_DSN"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`

	UserTags          []string `env:"USER_TAGS" envSeparator:","`
	PasswordMinLength int      `env:"PASSWORD_MIN_LENGTH" envDefault:"1"`

	HashWorkers    int    `env:"HASH_WORKERS" envDefault:"0"`
	Argon2MemoryKB uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Time     uint32 `env:"ARGON2_TIME" envDefault:"1"`
	Argon2Threads  uint8  `env:"ARGON2_THREADS" envDefault:"4"`
}

// Load parses the environment and checks the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: MONGO_URI is required for the %s backend", c.StoreBackend)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required for the %s backend", c.StoreBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the %s backend", c.StoreBackend)
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("config: PASSWORD_MIN_LENGTH must be at least 1")
	}
	if c.HashWorkers < 0 {
		return fmt.Errorf("config: HASH_WORKERS must not be negative")
	}
	return nil
}
