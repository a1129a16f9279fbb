package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifeauth/internal/flagx"
	"github.com/dmitrijs2005/lifeauth/internal/timex"
)

// jsonConfig is the DTO for JSON unmarshalling. Pointer fields distinguish
// "absent" from "zero", so a partial config file only overrides what it
// names. Durations go through timex.Duration and accept both "5m" strings
// and integer nanoseconds.
type jsonConfig struct {
	MatchThreshold        *float32        `json:"match_threshold"`
	LivenessThreshold     *float32        `json:"liveness_threshold"`
	QualityThreshold      *float32        `json:"quality_threshold"`
	MaxFailedAttempts     *uint32         `json:"max_failed_attempts"`
	LockoutDuration       *timex.Duration `json:"lockout_duration"`
	RequireLiveness       *bool           `json:"require_liveness"`
	DetectHealthAnomalies *bool           `json:"detect_health_anomalies"`
	RequireFastingSample  *bool           `json:"require_fasting_sample"`

	SensorDevice *string `json:"sensor_device"`

	StoreDriver *string `json:"store_driver"`
	DatabaseDSN *string `json:"database_dsn"`

	VaultBackend *string `json:"vault_backend"`
	VaultDir     *string `json:"vault_dir"`
	S3Region     *string `json:"s3_region"`
	S3Endpoint   *string `json:"s3_endpoint"`
	S3Bucket     *string `json:"s3_bucket"`
	S3AccessKey  *string `json:"s3_access_key"`
	S3SecretKey  *string `json:"s3_secret_key"`

	SessionSecret *string         `json:"session_secret"`
	SessionTTL    *timex.Duration `json:"session_ttl"`

	MetricsAddr *string `json:"metrics_addr"`
	LogLevel    *string `json:"log_level"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// No flag means no file and no changes.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	jc := &jsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if jc.MatchThreshold != nil {
		cfg.MatchThreshold = *jc.MatchThreshold
	}
	if jc.LivenessThreshold != nil {
		cfg.LivenessThreshold = *jc.LivenessThreshold
	}
	if jc.QualityThreshold != nil {
		cfg.QualityThreshold = *jc.QualityThreshold
	}
	if jc.MaxFailedAttempts != nil {
		cfg.MaxFailedAttempts = *jc.MaxFailedAttempts
	}
	if jc.LockoutDuration != nil {
		cfg.LockoutDuration = jc.LockoutDuration.Duration
	}
	if jc.RequireLiveness != nil {
		cfg.RequireLiveness = *jc.RequireLiveness
	}
	if jc.DetectHealthAnomalies != nil {
		cfg.DetectHealthAnomalies = *jc.DetectHealthAnomalies
	}
	if jc.RequireFastingSample != nil {
		cfg.RequireFastingSample = *jc.RequireFastingSample
	}
	if jc.SensorDevice != nil {
		cfg.SensorDevice = *jc.SensorDevice
	}
	if jc.StoreDriver != nil {
		cfg.StoreDriver = *jc.StoreDriver
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.VaultBackend != nil {
		cfg.VaultBackend = *jc.VaultBackend
	}
	if jc.VaultDir != nil {
		cfg.VaultDir = *jc.VaultDir
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3Endpoint != nil {
		cfg.S3Endpoint = *jc.S3Endpoint
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
	if jc.SessionSecret != nil {
		cfg.SessionSecret = *jc.SessionSecret
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
