package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPLogBodies bool   `env:"HTTP_LOG_BODIES" envDefault:"false"`

	// Record sinks. Each one is disabled when left empty.
	PostgresDSN string `env:"POSTGRES_DSN"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/records.db"`
	ExportDir   string `env:"EXPORT_DIR" envDefault:"data/sessions"`

	ExportWorkers     int `env:"EXPORT_WORKERS" envDefault:"2"`
	ExportQueueSize   int `env:"EXPORT_QUEUE_SIZE" envDefault:"1024"`
	ExportRetryMax    int `env:"EXPORT_RETRY_MAX" envDefault:"3"`
	ExportRetryBaseMS int `env:"EXPORT_RETRY_BASE_MS" envDefault:"500"`
	ExportTimeoutMS   int `env:"EXPORT_TIMEOUT_MS" envDefault:"5000"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`

	// MaxRounds caps client-requested round counts and must be positive.
	DefaultRounds int `env:"DEFAULT_ROUNDS" envDefault:"10"`
	MaxRounds     int `env:"MAX_ROUNDS" envDefault:"100"`

	PayoffT int `env:"PAYOFF_T" envDefault:"5"`
	PayoffR int `env:"PAYOFF_R" envDefault:"3"`
	PayoffP int `env:"PAYOFF_P" envDefault:"1"`
	PayoffS int `env:"PAYOFF_S" envDefault:"0"`

	// RandomSeed of 0 seeds the random strategy from the clock.
	RandomSeed          int64   `env:"RANDOM_SEED" envDefault:"0"`
	RandomCooperateProb float64 `env:"RANDOM_COOPERATE_PROB" envDefault:"0.5"`

	SessionRetainMins   int `env:"SESSION_RETAIN_MINUTES" envDefault:"30"`
	JanitorIntervalSecs int `env:"JANITOR_INTERVAL_SECONDS" envDefault:"60"`

	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxRounds < 1 {
		return cfg, fmt.Errorf("MAX_ROUNDS must be at least 1, got %d", cfg.MaxRounds)
	}
	return cfg, nil
}
