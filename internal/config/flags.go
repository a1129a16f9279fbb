package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifeauth/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
// Supported flags (short forms):
//
//	-d string   database DSN
//	-s string   store driver (sqlite or postgres)
//	-v string   vault backend (fs, s3 or memory)
//	-o string   vault directory for the fs backend
//	-p string   sensor device path (empty selects the simulator)
//	-m string   metrics listen address (empty disables the endpoint)
//	-l string   log level (debug, info, warn, error)
//	-k string   session signing key
//	-t int      match threshold, percent
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// components (notably -c/-config) pass through untouched.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-v", "-o", "-p", "-m", "-l", "-k", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "store driver (sqlite or postgres)")
	fs.StringVar(&cfg.VaultBackend, "v", cfg.VaultBackend, "vault backend (fs, s3 or memory)")
	fs.StringVar(&cfg.VaultDir, "o", cfg.VaultDir, "vault directory for the fs backend")
	fs.StringVar(&cfg.SensorDevice, "p", cfg.SensorDevice, "sensor device path")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.SessionSecret, "k", cfg.SessionSecret, "session signing key")
	matchPercent := fs.Int("t", int(cfg.MatchThreshold*100), "match threshold (percent)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg.MatchThreshold = float32(*matchPercent) / 100
	return nil
}
