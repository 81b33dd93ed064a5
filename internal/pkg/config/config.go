package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
	Notify  NotifyConfig
	Archive ArchiveConfig
	Fees    FeeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=registration_crm"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type StorageConfig struct {
	Dir string `env:"STORAGE_DIR, default=./data/files"`
}

type NotifyConfig struct {
	// Workers is the size of the notification dispatcher pool.
	Workers int `env:"NOTIFY_WORKERS, default=4"`
	// UnreadTTL bounds staleness of the cached unread counters.
	UnreadTTL time.Duration `env:"NOTIFY_UNREAD_TTL, default=30s"`
}

type ArchiveConfig struct {
	// Interval is how often the archival sweep runs.
	Interval time.Duration `env:"ARCHIVE_INTERVAL, default=1h"`
	// MinAge is how long a job must sit in a terminal status before the
	// sweep archives it.
	MinAge time.Duration `env:"ARCHIVE_MIN_AGE, default=720h"`
}

type FeeConfig struct {
	// Completion fees credited to the assigned reviewer and lawyer when a
	// job finishes.
	Reviewer float64 `env:"FEE_REVIEWER, default=0"`
	Lawyer   float64 `env:"FEE_LAWYER,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
