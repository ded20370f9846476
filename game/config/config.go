package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration.
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	TotalRounds  int           `env:"TOTAL_ROUNDS" envDefault:"10"`
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"10m"`
	MaxInactive  time.Duration `env:"MAX_INACTIVE" envDefault:"60m"`

	GoogleAPIKey  string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	QuestionsFile string `env:"QUESTIONS_FILE"`

	NgrokEnabled bool   `env:"NGROK_ENABLED" envDefault:"false"`
	NgrokDomain  string `env:"NGROK_DOMAIN"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TotalRounds < 1 {
		return fmt.Errorf("invalid total rounds %d", c.TotalRounds)
	}
	if c.ReapInterval <= 0 || c.MaxInactive <= 0 {
		return fmt.Errorf("reap interval and max inactive must be positive")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
