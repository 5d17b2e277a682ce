package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken     string `env:"DISCORD_TOKEN,notEmpty"`
	DiscordClientID  string `env:"DISCORD_CLIENT_ID"`
	DiscordGuildID   string `env:"DISCORD_GUILD_ID"`
	RegisterCommands bool   `env:"REGISTER_COMMANDS" envDefault:"true"`
	DeveloperID      string `env:"DEVELOPER_ID"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDir   string `env:"LOG_DIR" envDefault:"logs"`

	NVAPIBaseURL string        `env:"NVAPI_BASE_URL" envDefault:"https://nvlabs.my.id"`
	NVAPITimeout time.Duration `env:"NVAPI_TIMEOUT" envDefault:"20s"`
	NVAPIRate    float64       `env:"NVAPI_RATE" envDefault:"5"`
	ShortURLBase string        `env:"SHORTURL_BASE_URL" envDefault:"https://nsu.my.id"`

	PaginationTTL         time.Duration `env:"PAGINATION_TTL" envDefault:"5m"`
	PaginationMaxSessions int           `env:"PAGINATION_MAX_SESSIONS" envDefault:"512"`
	CooldownSweepInterval time.Duration `env:"COOLDOWN_SWEEP_INTERVAL" envDefault:"1m"`

	StatusAddr      string `env:"STATUS_ADDR" envDefault:":8787"`
	CommandCacheDir string `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses a fixed environment, ignoring the process one.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.NVAPITimeout <= 0:
		return errors.New("NVAPI_TIMEOUT must be positive")
	case c.NVAPIRate <= 0:
		return errors.New("NVAPI_RATE must be positive")
	case c.PaginationTTL <= 0:
		return errors.New("PAGINATION_TTL must be positive")
	case c.PaginationMaxSessions <= 0:
		return errors.New("PAGINATION_MAX_SESSIONS must be positive")
	}
	return nil
}
