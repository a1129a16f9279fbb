package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/lifeauth/internal/config"
	"github.com/dmitrijs2005/lifeauth/internal/credential"
	"github.com/dmitrijs2005/lifeauth/internal/engine"
	"github.com/dmitrijs2005/lifeauth/internal/logging"
	"github.com/dmitrijs2005/lifeauth/internal/observability"
	"github.com/dmitrijs2005/lifeauth/internal/sensor"
	"github.com/dmitrijs2005/lifeauth/internal/session"
	"github.com/dmitrijs2005/lifeauth/internal/store"
	"github.com/dmitrijs2005/lifeauth/internal/store/postgres"
	"github.com/dmitrijs2005/lifeauth/internal/store/sqlite"
	"github.com/dmitrijs2005/lifeauth/internal/vault"
)

// authEngine is the engine surface the commands drive. *engine.Engine
// satisfies it; tests can provide a stub.
type authEngine interface {
	Enroll(ctx context.Context, provider sensor.Provider, userID, password string) (*credential.Credential, error)
	Authenticate(ctx context.Context, provider sensor.Provider, cred *credential.Credential, password string) (*engine.MatchResult, error)
	Rebaseline(ctx context.Context, provider sensor.Provider, cred *credential.Credential, password string) error
	ResetLockout(cred *credential.Credential)
}

// App ties the authentication engine, the credential store, the backup vault
// and a sensor provider to the interactive REPL.
type App struct {
	config   *config.Config
	log      logging.Logger
	engine   authEngine
	store    store.Store
	vault    vault.Vault
	provider sensor.Provider
	metrics  *observability.Metrics
	reader   *bufio.Reader
}

// NewApp opens every backend named by the config and assembles the engine.
// On error, backends opened so far are closed again.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault(os.Stdout, cfg.LogLevel)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	vlt, err := openVault(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}

	provider, err := sensor.Open(cfg.SensorDevice)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to open sensor: %w", err)
	}

	issuer, err := session.NewIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL)
	if err != nil {
		st.Close()
		provider.Close()
		return nil, fmt.Errorf("failed to build session issuer: %w", err)
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())

	eng := engine.New(engineOptions(cfg),
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
		engine.WithSessionIssuer(issuer),
		engine.WithStore(st),
	)

	return &App{
		config:   cfg,
		log:      logger,
		engine:   eng,
		store:    st,
		vault:    vlt,
		provider: provider,
		metrics:  metrics,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// engineOptions maps the config onto the engine policy.
func engineOptions(cfg *config.Config) engine.Options {
	opts := engine.DefaultOptions()
	opts.MatchThreshold = cfg.MatchThreshold
	opts.LivenessThreshold = cfg.LivenessThreshold
	opts.QualityThreshold = cfg.QualityThreshold
	opts.MaxFailedAttempts = cfg.MaxFailedAttempts
	opts.LockoutDuration = cfg.LockoutDuration
	opts.RequireLiveness = cfg.RequireLiveness
	opts.DetectHealthAnomalies = cfg.DetectHealthAnomalies
	opts.RequireFastingSample = cfg.RequireFastingSample
	return opts
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return sqlite.Open(ctx, cfg.DatabaseDSN)
	case "postgres":
		return postgres.Open(ctx, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openVault(ctx context.Context, cfg *config.Config) (vault.Vault, error) {
	switch cfg.VaultBackend {
	case "fs":
		return vault.NewFS(cfg.VaultDir)
	case "s3":
		return vault.NewS3(ctx, vault.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "memory":
		return vault.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown vault backend %q", cfg.VaultBackend)
	}
}

// Run starts the optional metrics endpoint and blocks in the REPL until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	if a.config.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}

	fmt.Println("LifeAuth CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// Close releases the sensor and the store.
func (a *App) Close(ctx context.Context) {
	if err := a.provider.Close(); err != nil {
		a.log.Error(ctx, "failed to close sensor", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Error(ctx, "failed to close store", "error", err)
	}
}

// getStatus renders the prompt decoration, currently the sensor state.
func (a *App) getStatus() string {
	return fmt.Sprintf("(%s)", a.provider.State())
}

// serveMetrics exposes /metrics on the configured address until ctx ends.
func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: a.config.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.log.Info(ctx, "metrics endpoint listening", "addr", a.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error(ctx, "metrics endpoint failed", "error", err)
	}
}
