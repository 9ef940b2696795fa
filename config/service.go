package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ServiceEnv holds the settings the services read from the environment rather than flags,
// mostly credentials that should not show up in a process listing.
type ServiceEnv struct {
	Env          string `env:"CROWDFUNDING_ENV"`
	KeypairPath  string `env:"CROWDFUNDING_KEYPAIR"`
	PrivateKey   string `env:"CROWDFUNDING_PRIVATE_KEY"`
	InfluxURL    string `env:"INFLUX_URL"`
	InfluxToken  string `env:"INFLUX_TOKEN"`
	InfluxOrg    string `env:"INFLUX_ORG" envDefault:"crowdfunding"`
	InfluxBucket string `env:"INFLUX_BUCKET"`
}

// InfluxEnabled reports whether both the influx endpoint and its token are set.
func (e *ServiceEnv) InfluxEnabled() bool {
	return e.InfluxURL != "" && e.InfluxToken != ""
}

// LoadServiceEnv loads dotenvFile into the process environment when it exists and parses
// ServiceEnv. Variables already set take precedence over the file.
func LoadServiceEnv(dotenvFile string) (*ServiceEnv, error) {
	if dotenvFile != "" {
		if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvFile, err)
		}
	}
	cfg, err := env.ParseAs[ServiceEnv]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.InfluxBucket == "" && cfg.Env != "" {
		cfg.InfluxBucket = "crowdfunding-" + cfg.Env
	}
	return &cfg, nil
}
