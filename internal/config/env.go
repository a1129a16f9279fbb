package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays cfg with LIFEAUTH_* environment variables. Unset
// variables leave the current values alone, so the env layer composes with
// defaults and the JSON file.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "LIFEAUTH_"}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
