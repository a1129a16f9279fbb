// Package config assembles the runtime settings for the LifeAuth CLI and
// daemon. Values are layered: built-in defaults, then an optional JSON file
// (-c/-config), then LIFEAUTH_* environment variables, then command-line
// flags. Later sources win.
package config

import "time"

// Config holds every tunable of the authentication stack.
//
// Engine fields mirror engine.Options; the rest select and parameterize the
// credential store, the backup vault, session signing, metrics and logging.
type Config struct {
	MatchThreshold        float32       `env:"MATCH_THRESHOLD"`
	LivenessThreshold     float32       `env:"LIVENESS_THRESHOLD"`
	QualityThreshold      float32       `env:"QUALITY_THRESHOLD"`
	MaxFailedAttempts     uint32        `env:"MAX_FAILED_ATTEMPTS"`
	LockoutDuration       time.Duration `env:"LOCKOUT_DURATION"`
	RequireLiveness       bool          `env:"REQUIRE_LIVENESS"`
	DetectHealthAnomalies bool          `env:"DETECT_HEALTH_ANOMALIES"`
	RequireFastingSample  bool          `env:"REQUIRE_FASTING_SAMPLE"`

	SensorDevice string `env:"SENSOR_DEVICE"`

	StoreDriver string `env:"STORE_DRIVER"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	VaultBackend string `env:"VAULT_BACKEND"`
	VaultDir     string `env:"VAULT_DIR"`
	S3Region     string `env:"S3_REGION"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	S3Bucket     string `env:"S3_BUCKET"`
	S3AccessKey  string `env:"S3_ACCESS_KEY"`
	S3SecretKey  string `env:"S3_SECRET_KEY"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL"`

	MetricsAddr string `env:"METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
// NOTE: the session secret and S3 credentials are insecure placeholders and
// must be overridden outside local development.
func (c *Config) LoadDefaults() {
	c.MatchThreshold = 0.85
	c.LivenessThreshold = 0.90
	c.QualityThreshold = 0.75
	c.MaxFailedAttempts = 5
	c.LockoutDuration = 5 * time.Minute
	c.RequireLiveness = true
	c.DetectHealthAnomalies = true
	c.RequireFastingSample = false

	// Empty device path selects the simulated sensor.
	c.SensorDevice = ""

	c.StoreDriver = "sqlite"
	c.DatabaseDSN = "lifeauth.db"

	c.VaultBackend = "fs"
	c.VaultDir = "backups"
	c.S3Region = "us-east-1"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3Bucket = "lifeauth"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"

	c.SessionSecret = "secretKey"
	c.SessionTTL = 15 * time.Minute

	c.MetricsAddr = ""
	c.LogLevel = "info"
}

// Load builds a Config by applying defaults, then overlaying the optional
// JSON file, environment variables and command-line flags, in that order.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
