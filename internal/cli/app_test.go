package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifeauth/internal/config"
	"github.com/dmitrijs2005/lifeauth/internal/sensor"
	"github.com/dmitrijs2005/lifeauth/internal/vault"
)

func TestEngineOptions_MapsConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MatchThreshold = 0.7
	cfg.MaxFailedAttempts = 9
	cfg.LockoutDuration = 10 * time.Minute
	cfg.RequireLiveness = false

	opts := engineOptions(cfg)

	if opts.MatchThreshold != 0.7 {
		t.Fatalf("MatchThreshold: %v", opts.MatchThreshold)
	}
	if opts.MaxFailedAttempts != 9 {
		t.Fatalf("MaxFailedAttempts: %v", opts.MaxFailedAttempts)
	}
	if opts.LockoutDuration != 10*time.Minute {
		t.Fatalf("LockoutDuration: %v", opts.LockoutDuration)
	}
	if opts.RequireLiveness {
		t.Fatalf("RequireLiveness should be off")
	}
	// fields without a config knob keep their engine defaults
	if opts.DriftTolerance != 0.10 {
		t.Fatalf("DriftTolerance: %v", opts.DriftTolerance)
	}
}

func TestOpenStore_Sqlite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: "sqlite",
		DatabaseDSN: filepath.Join(t.TempDir(), "credentials.db"),
	}

	st, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openStore err: %v", err)
	}
	st.Close()
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), &config.Config{StoreDriver: "bolt"})
	if err == nil || !strings.Contains(err.Error(), "unknown store driver") {
		t.Fatalf("want unknown driver error, got %v", err)
	}
}

func TestOpenVault_Backends(t *testing.T) {
	ctx := context.Background()

	v, err := openVault(ctx, &config.Config{VaultBackend: "memory"})
	if err != nil {
		t.Fatalf("memory backend err: %v", err)
	}
	if _, ok := v.(*vault.Memory); !ok {
		t.Fatalf("want *vault.Memory, got %T", v)
	}

	v, err = openVault(ctx, &config.Config{VaultBackend: "fs", VaultDir: t.TempDir()})
	if err != nil {
		t.Fatalf("fs backend err: %v", err)
	}
	if _, ok := v.(*vault.FS); !ok {
		t.Fatalf("want *vault.FS, got %T", v)
	}

	if _, err := openVault(ctx, &config.Config{VaultBackend: "tape"}); err == nil {
		t.Fatalf("want unknown backend error")
	}
}

func TestGetStatus_ShowsSensorState(t *testing.T) {
	provider, err := sensor.NewSimulator()
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	a := &App{provider: provider}

	if got := a.getStatus(); got != "(Ready)" {
		t.Fatalf("status %q", got)
	}
}
