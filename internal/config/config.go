package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	// Discord Bot
	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordChannelID string `env:"CHANNEL"`

	// Commands
	Prefix string `env:"POINTS_PREFIX" envDefault:"!points"`

	// Ledger
	LedgerBackend string `env:"LEDGER_BACKEND" envDefault:"file"`
	RecordPath    string `env:"RECORD"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SaveRetries   int    `env:"SAVE_RETRIES" envDefault:"2"`

	// Web Server; empty disables the leaderboard API.
	WebBind string `env:"WEB_BIND"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the environment, after loading .env if present.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed to run the bot. It is separate from
// Load so command line flags can fill gaps first.
func (c *Config) Validate() error {
	c.LedgerBackend = strings.ToLower(strings.TrimSpace(c.LedgerBackend))
	c.Prefix = strings.TrimSpace(c.Prefix)

	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DiscordChannelID == "" {
		return fmt.Errorf("CHANNEL is required")
	}
	if c.Prefix == "" {
		return fmt.Errorf("POINTS_PREFIX must not be empty")
	}
	if strings.ContainsFunc(c.Prefix, isSpace) {
		return fmt.Errorf("POINTS_PREFIX must be a single word, got %q", c.Prefix)
	}
	if c.SaveRetries < 0 {
		return fmt.Errorf("SAVE_RETRIES must not be negative")
	}

	switch c.LedgerBackend {
	case BackendFile, BackendSQLite:
		if c.RecordPath == "" {
			return fmt.Errorf("RECORD is required for the %s ledger backend", c.LedgerBackend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres ledger backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
