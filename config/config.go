package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/kubex/rclink/roster"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"4000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON"`

	// StorageConfig is the JSON document accepted by storage.Load.
	StorageConfig string `env:"STORAGE_CONFIG" envDefault:"{\"provider\":\"sql\",\"configuration\":{\"primaryDsn\":\"/app/data/rcline.db\",\"sqlLite\":true}}"`

	ChannelSecret      string `env:"LINE_CHANNEL_SECRET"`
	ChannelAccessToken string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	LineAPIBase        string `env:"LINE_API_BASE" envDefault:"https://api.line.me"`
	AllowInsecure      bool   `env:"DEV_ALLOW_INSECURE"`

	RedisURL       string `env:"REDIS_URL" envDefault:"redis://redis:6379"`
	QueueKey       string `env:"QUEUE_KEY" envDefault:"rclink:link_follow"`
	LogsBasePath   string `env:"LOGS_BASE_PATH" envDefault:"/app/logs"`
	OnboardingMode string `env:"ONBOARDING_MODE" envDefault:"silent"`
	OnboardingNFKC bool   `env:"ONBOARDING_NAME_NFKC"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.ChannelSecret == "" && !c.AllowInsecure {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is required"))
	}
	if c.ChannelAccessToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) Normalizer() roster.Normalizer {
	return roster.Normalizer{NFKC: c.OnboardingNFKC}
}
