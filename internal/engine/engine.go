// Package engine drives two-factor plasma-signature authentication. The
// password factor derives the AES key that opens the enrolled signature; the
// biometric factor scores a fresh sensor sample against it. Both factors must
// pass in a single call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
	"github.com/dmitrijs2005/lifeauth/internal/credential"
	"github.com/dmitrijs2005/lifeauth/internal/cryptox"
	"github.com/dmitrijs2005/lifeauth/internal/health"
	"github.com/dmitrijs2005/lifeauth/internal/logging"
	"github.com/dmitrijs2005/lifeauth/internal/observability"
	"github.com/dmitrijs2005/lifeauth/internal/plasma"
	"github.com/dmitrijs2005/lifeauth/internal/scoring"
	"github.com/dmitrijs2005/lifeauth/internal/sensor"
	"github.com/dmitrijs2005/lifeauth/internal/session"
	"github.com/dmitrijs2005/lifeauth/internal/shared"
	"github.com/dmitrijs2005/lifeauth/internal/store"
)

// Engine authenticates users against enrolled plasma credentials. Credential
// mutations within one call happen in a fixed order; an Engine must not share
// one credential or provider across concurrent calls.
type Engine struct {
	opts    Options
	log     logging.Logger
	metrics *observability.Metrics
	issuer  *session.Issuer
	store   store.Store
}

// Option wires optional collaborators into an Engine.
type Option func(*Engine)

// WithLogger replaces the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSessionIssuer makes successful authentications return a signed session
// token in MatchResult.Token.
func WithSessionIssuer(i *session.Issuer) Option {
	return func(e *Engine) { e.issuer = i }
}

// WithStore persists credential state: enrollments are saved and counter or
// lock mutations are written back after every attempt.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// New builds an Engine with the given policy.
func New(opts Options, extra ...Option) *Engine {
	e := &Engine{opts: opts, log: logging.NewNopLogger()}
	for _, o := range extra {
		o(e)
	}
	return e
}

// MatchResult reports the outcome of one authentication attempt. On a
// below-threshold attempt it is returned alongside the error so callers can
// inspect the sub-scores.
type MatchResult struct {
	IsMatch               bool
	OverallSimilarity     float32
	ProteinSimilarity     float32
	AntibodySimilarity    float32
	MetaboliteSimilarity  float32
	LipidSimilarity       float32
	EnzymeSimilarity      float32
	ElectrolyteSimilarity float32
	// LivenessScore is 1 when the liveness gate is disabled.
	LivenessScore float32
	QualityScore  float32
	HealthAlert   bool
	HealthSummary string
	// Token is a signed session token, set when an issuer is wired.
	Token string
}

// Enroll captures a gated plasma sample and seals it into a new credential
// under the user's password. Gate failures leave no trace: no credential
// exists yet, so no counters move.
func (e *Engine) Enroll(ctx context.Context, provider sensor.Provider, userID, password string) (*credential.Credential, error) {
	cred, err := e.enroll(ctx, provider, userID, password)
	if e.metrics != nil {
		e.metrics.RecordEnrollment(err)
	}
	return cred, err
}

func (e *Engine) enroll(ctx context.Context, provider sensor.Provider, userID, password string) (*credential.Credential, error) {
	if provider == nil {
		return nil, autherr.E(autherr.InitFailed, "nil sensor provider")
	}
	if l := len(userID); l == 0 || l >= credential.UserIDSize {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("user id must be 1..%d bytes", credential.UserIDSize-1))
	}
	if password == "" {
		return nil, autherr.E(autherr.InitFailed, "empty password")
	}

	sig, quality, err := e.captureSample(ctx, provider)
	if err != nil {
		return nil, err
	}
	defer sig.Wipe()

	if quality.Overall < e.opts.QualityThreshold {
		return nil, autherr.E(autherr.PoorQuality,
			fmt.Sprintf("sample quality %.2f below threshold %.2f", quality.Overall, e.opts.QualityThreshold))
	}

	var enrollLiveness float32
	if e.opts.RequireLiveness {
		live, err := provider.CheckLiveness(ctx)
		if err != nil {
			return nil, err
		}
		if live.Overall < e.opts.LivenessThreshold {
			return nil, autherr.E(autherr.SampleFailed,
				fmt.Sprintf("liveness %.2f below threshold %.2f", live.Overall, e.opts.LivenessThreshold))
		}
		enrollLiveness = live.Overall
	}

	if e.opts.RequireFastingSample && !sig.IsFastingSample {
		return nil, autherr.E(autherr.PoorQuality, "fasting sample required")
	}

	cred := &credential.Credential{
		UserID:             userID,
		EnrolledTimestamp:  nowMillis(),
		EnrollmentLiveness: enrollLiveness,
	}
	if err := e.sealSignature(sig, password, cred); err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.store.Save(ctx, cred); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, autherr.E(autherr.InitFailed,
					fmt.Sprintf("user %q is already enrolled", userID), err)
			}
			return nil, fmt.Errorf("failed to persist credential: %w", err)
		}
	}

	e.log.Info(ctx, "enrollment complete",
		"user", userID, "entropy_bits", sig.EntropyBits, "liveness", enrollLiveness)
	return cred, nil
}

// Authenticate runs one two-factor attempt against an enrolled credential.
// The password factor is verified before any sample is drawn, so a wrong
// password never reaches the sensor. Provider errors propagate unchanged.
func (e *Engine) Authenticate(ctx context.Context, provider sensor.Provider, cred *credential.Credential, password string) (*MatchResult, error) {
	res, err := e.authenticate(ctx, provider, cred, password)
	if e.metrics != nil {
		e.metrics.RecordAuthAttempt(err)
	}
	return res, err
}

func (e *Engine) authenticate(ctx context.Context, provider sensor.Provider, cred *credential.Credential, password string) (*MatchResult, error) {
	if provider == nil || cred == nil {
		return nil, autherr.E(autherr.InitFailed, "nil provider or credential")
	}

	stored, err := e.verifyPassword(ctx, cred, password)
	if err != nil {
		return nil, err
	}
	defer stored.Wipe()

	fresh, quality, err := e.captureSample(ctx, provider)
	if err != nil {
		return nil, err
	}
	defer fresh.Wipe()

	livenessScore := float32(1)
	if e.opts.RequireLiveness {
		live, err := provider.CheckLiveness(ctx)
		if err != nil {
			return nil, err
		}
		livenessScore = live.Overall
		if live.Overall < e.opts.LivenessThreshold {
			ferr := autherr.E(autherr.SampleFailed,
				fmt.Sprintf("liveness %.2f below threshold %.2f", live.Overall, e.opts.LivenessThreshold))
			return nil, e.fail(ctx, cred, false, ferr)
		}
	}

	r := scoring.Compare(stored, fresh)
	if e.metrics != nil {
		e.metrics.ObserveSimilarity(float64(r.Overall))
	}

	res := &MatchResult{
		OverallSimilarity:     r.Overall,
		ProteinSimilarity:     r.Protein,
		AntibodySimilarity:    r.Antibody,
		MetaboliteSimilarity:  r.Metabolite,
		LipidSimilarity:       r.Lipid,
		EnzymeSimilarity:      r.Enzyme,
		ElectrolyteSimilarity: r.Electrolyte,
		LivenessScore:         livenessScore,
		QualityScore:          quality.Overall,
	}

	if r.Overall < e.opts.MatchThreshold {
		ferr := autherr.E(autherr.ProfileMismatch,
			fmt.Sprintf("similarity %.3f below threshold %.3f", r.Overall, e.opts.MatchThreshold))
		return res, e.fail(ctx, cred, true, ferr)
	}

	if e.issuer != nil {
		token, err := e.issuer.Issue(cred.UserID)
		if err != nil {
			return nil, err
		}
		res.Token = token
	}

	res.IsMatch = true
	cred.AuthCount++
	cred.LastAuthTimestamp = nowMillis()
	cred.FailedCount = 0

	if e.opts.DetectHealthAnomalies {
		report := health.Check(fresh, stored)
		if report.AnyFlag() {
			res.HealthAlert = true
			res.HealthSummary = report.Summary
			if e.metrics != nil {
				e.metrics.RecordHealthAlert()
			}
			e.log.Warn(ctx, "health anomaly on successful match",
				"user", cred.UserID, "summary", report.Summary)
		}
	}

	e.persist(ctx, cred)
	e.log.Info(ctx, "authentication succeeded",
		"user", cred.UserID, "similarity", r.Overall, "auth_count", cred.AuthCount)
	return res, nil
}

// Rebaseline re-captures the biometric factor under the existing password:
// after the password factor and a matching fresh sample are verified, the
// fresh signature replaces the stored one under a new salt and IV. User id,
// enrollment timestamp and auth count are preserved.
func (e *Engine) Rebaseline(ctx context.Context, provider sensor.Provider, cred *credential.Credential, password string) error {
	err := e.rebaseline(ctx, provider, cred, password)
	if e.metrics != nil {
		e.metrics.RecordRebaseline(err)
	}
	return err
}

func (e *Engine) rebaseline(ctx context.Context, provider sensor.Provider, cred *credential.Credential, password string) error {
	if provider == nil || cred == nil {
		return autherr.E(autherr.InitFailed, "nil provider or credential")
	}

	stored, err := e.verifyPassword(ctx, cred, password)
	if err != nil {
		return err
	}
	defer stored.Wipe()

	fresh, quality, err := e.captureSample(ctx, provider)
	if err != nil {
		return err
	}
	defer fresh.Wipe()

	// the fresh signature becomes the stored baseline, so it passes the same
	// storage-grade gates as enrollment
	if quality.Overall < e.opts.QualityThreshold {
		return autherr.E(autherr.PoorQuality,
			fmt.Sprintf("sample quality %.2f below threshold %.2f", quality.Overall, e.opts.QualityThreshold))
	}
	if e.opts.RequireFastingSample && !fresh.IsFastingSample {
		return autherr.E(autherr.PoorQuality, "fasting sample required")
	}

	liveness := cred.EnrollmentLiveness
	if e.opts.RequireLiveness {
		live, err := provider.CheckLiveness(ctx)
		if err != nil {
			return err
		}
		if live.Overall < e.opts.LivenessThreshold {
			ferr := autherr.E(autherr.SampleFailed,
				fmt.Sprintf("liveness %.2f below threshold %.2f", live.Overall, e.opts.LivenessThreshold))
			return e.fail(ctx, cred, false, ferr)
		}
		liveness = live.Overall
	}

	r := scoring.Compare(stored, fresh)
	if r.Overall < e.opts.MatchThreshold {
		ferr := autherr.E(autherr.ProfileMismatch,
			fmt.Sprintf("similarity %.3f below threshold %.3f", r.Overall, e.opts.MatchThreshold))
		return e.fail(ctx, cred, true, ferr)
	}

	if err := e.sealSignature(fresh, password, cred); err != nil {
		return err
	}
	cred.EnrollmentLiveness = liveness
	cred.FailedCount = 0

	if e.store != nil {
		if err := e.store.Update(ctx, cred); err != nil {
			return fmt.Errorf("failed to persist rebaselined credential: %w", err)
		}
	}

	e.log.Info(ctx, "baseline refreshed", "user", cred.UserID, "similarity", r.Overall)
	return nil
}

// ResetLockout clears the lock flag and the failure counter. Nothing else on
// the credential changes and nothing is persisted here; callers owning a
// store write the unlocked record back themselves.
func (e *Engine) ResetLockout(cred *credential.Credential) {
	if cred == nil {
		return
	}
	cred.IsLocked = false
	cred.FailedCount = 0
}

// verifyPassword proves the password factor: it derives the stored key,
// opens the encrypted signature and checks the verification hash in constant
// time. Failure paths count against the credential. The returned signature
// is sensitive and must be wiped by the caller.
func (e *Engine) verifyPassword(ctx context.Context, cred *credential.Credential, password string) (*plasma.Signature, error) {
	if cred.IsLocked {
		return nil, autherr.E(autherr.Locked, "credential is locked")
	}

	kdfStart := time.Now()
	key := cryptox.DeriveKey([]byte(password), cred.Salt[:])
	if e.metrics != nil {
		e.metrics.ObserveKDFDuration(time.Since(kdfStart).Seconds())
	}

	plaintext, err := cryptox.Decrypt(key, cred.IV[:], cred.EncryptedSignature, cred.AuthTag[:])
	shared.WipeByteArray(key)
	if err != nil {
		return nil, e.fail(ctx, cred, true, err)
	}
	defer shared.WipeByteArray(plaintext)

	// hash mismatch counts as a failure but never locks
	if !cryptox.Equal(cryptox.MakeVerifier(plaintext), cred.VerificationHash[:]) {
		ferr := autherr.E(autherr.ProfileMismatch, "stored signature failed verification")
		return nil, e.fail(ctx, cred, false, ferr)
	}

	stored, err := plasma.Decode(plaintext)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// sealSignature encrypts sig under a fresh salt and IV derived from password
// and writes the crypto fields and stable baselines into cred. Key and
// plaintext are wiped before return.
func (e *Engine) sealSignature(sig *plasma.Signature, password string, cred *credential.Credential) error {
	salt, err := cryptox.RandBytes(cryptox.SaltSize)
	if err != nil {
		return err
	}

	kdfStart := time.Now()
	key := cryptox.DeriveKey([]byte(password), salt)
	defer shared.WipeByteArray(key)
	if e.metrics != nil {
		e.metrics.ObserveKDFDuration(time.Since(kdfStart).Seconds())
	}

	plaintext := sig.Encode()
	defer shared.WipeByteArray(plaintext)

	iv, ciphertext, tag, err := cryptox.Encrypt(key, plaintext)
	if err != nil {
		return err
	}

	cred.Version = credential.Version
	cred.EncryptedSignature = ciphertext
	copy(cred.Salt[:], salt)
	copy(cred.IV[:], iv)
	copy(cred.AuthTag[:], tag)
	copy(cred.VerificationHash[:], cryptox.MakeVerifier(plaintext))
	cred.BaselineAGRatio = sig.Proteins.AGRatio
	cred.BaselineIgGRatios = sig.Antibodies.IgGSubclassRatios
	return nil
}

// captureSample draws one sample from the provider, timing it for metrics.
func (e *Engine) captureSample(ctx context.Context, provider sensor.Provider) (*plasma.Signature, *sensor.SampleQuality, error) {
	start := time.Now()
	sig, quality, err := provider.Sample(ctx)
	if err != nil {
		return nil, nil, err
	}
	if e.metrics != nil {
		e.metrics.ObserveSampleDuration(time.Since(start).Seconds())
	}
	return sig, quality, nil
}

// fail registers a failed attempt and persists the counters. When lockout is
// set and the attempt reaches MaxFailedAttempts, the credential locks and
// the returned error has kind Locked wrapping err.
func (e *Engine) fail(ctx context.Context, cred *credential.Credential, lockout bool, err error) error {
	cred.FailedCount++
	if lockout && e.opts.MaxFailedAttempts > 0 && cred.FailedCount >= e.opts.MaxFailedAttempts {
		cred.IsLocked = true
		if e.metrics != nil {
			e.metrics.RecordLockout()
		}
		e.log.Warn(ctx, "credential locked",
			"user", cred.UserID, "failed_count", cred.FailedCount)
		err = autherr.E(autherr.Locked, "too many failed attempts", err)
	}
	e.persist(ctx, cred)
	return err
}

// persist writes mutated credential state back when a store is wired. The
// authentication outcome never depends on it; failures are logged.
func (e *Engine) persist(ctx context.Context, cred *credential.Credential) {
	if e.store == nil {
		return
	}
	if err := e.store.Update(ctx, cred); err != nil {
		e.log.Error(ctx, "failed to persist credential state",
			"user", cred.UserID, "error", err)
	}
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
