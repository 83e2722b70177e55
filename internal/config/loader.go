package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load loads and validates the configuration.
//
// The sequence is:
//  1. Enforce UTC process time to prevent due-date drift bugs.
//  2. Load a .env file if present (non-fatal when absent; never overrides
//     real environment variables).
//  3. Process envconfig struct tags.
//  4. Validate with go-playground/validator.
func Load() (*Config, error) {
	time.Local = time.UTC

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: processing environment: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("config: field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("config: validation: %w", err)
	}
	return nil
}
