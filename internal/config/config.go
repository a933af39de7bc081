// internal/config/config.go
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// Config holds environment-based configuration for the server and historian.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseURL wins over the discrete PG settings when set.
	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PGHost           string `env:"PG_HOST"`
	PGPort           string `env:"PG_PORT" envDefault:"5432"`
	PGDatabase       string `env:"PG_DATABASE"`
	MigrateOnStart   bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Events are pushed here by the server and drained by the historian.
	EventQueue string `env:"HISTORIAN_QUEUE_NAME" envDefault:"premade_events"`

	HistorianBatchSize int `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushMs   int `env:"HISTORIAN_FLUSH_MS" envDefault:"500"`

	DetectInterval   time.Duration `env:"DETECT_INTERVAL" envDefault:"10s"`
	EstimateInterval time.Duration `env:"ESTIMATE_INTERVAL" envDefault:"30s"`
	ProposalTTL      time.Duration `env:"PROPOSAL_TTL" envDefault:"30m"`
	PoolLimit        int           `env:"POOL_LIMIT" envDefault:"100"`
	HistoryLimit     int           `env:"HISTORY_LIMIT" envDefault:"50"`

	// TokenExpireTime is a duration, or "never"/"0"/empty for tokens without exp.
	TokenExpireTime   string `env:"TOKEN_EXPIRE_TIME" envDefault:"72h"`
	JWTPrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`
}

// Load parses the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, eris.Wrap(err, "failed to parse environment variables")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// HasDatabase reports whether enough settings exist to reach Postgres.
func (c Config) HasDatabase() bool {
	return c.DatabaseURL != "" || c.PGHost != ""
}

// HistorianFlushDelay returns the flush interval as a duration.
func (c Config) HistorianFlushDelay() time.Duration {
	return time.Duration(c.HistorianFlushMs) * time.Millisecond
}
