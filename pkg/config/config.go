// Package config loads CLI defaults from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config holds run defaults; command-line flags override them.
type Config struct {
	Output          string `env:"OUTPUT" envDefault:"checkedCodes.txt"`
	Separator       string `env:"SEPARATOR" envDefault:"\\u001d"`
	StrictSeparator bool   `env:"STRICT_SEPARATOR" envDefault:"false"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"text"`
}

const envPrefix = "CODECHECK_"

// Load reads the given .env files (a missing default .env is ignored) and
// parses CODECHECK_* variables.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: envPrefix})
	if err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return &cfg, nil
}
