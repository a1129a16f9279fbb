package engine

import "time"

// Options carries the engine policy. Zero-value Options disable every gate;
// production callers start from DefaultOptions and override fields.
type Options struct {
	// MatchThreshold is the minimum overall similarity accepted as a match.
	MatchThreshold float32
	// LivenessThreshold is the minimum liveness score accepted when
	// RequireLiveness is set.
	LivenessThreshold float32
	// QualityThreshold is the minimum sample quality accepted when a
	// signature is captured for storage (enrollment, rebaseline).
	QualityThreshold float32
	// MaxFailedAttempts locks the credential once FailedCount reaches it.
	// Zero disables lockout.
	MaxFailedAttempts uint32
	// LockoutDuration is reserved for timed lockout release. ResetLockout is
	// the only unlock path today.
	LockoutDuration time.Duration
	// RequireLiveness gates enrollment and authentication on a liveness check.
	RequireLiveness bool
	// DetectHealthAnomalies decorates successful matches with a health report.
	DetectHealthAnomalies bool
	// RequireFastingSample rejects non-fasting enrollment samples.
	RequireFastingSample bool
	// DriftTolerance is reserved for adaptive rebaselining policy.
	DriftTolerance float32
}

// DefaultOptions returns the recommended production policy.
func DefaultOptions() Options {
	return Options{
		MatchThreshold:        0.85,
		LivenessThreshold:     0.90,
		QualityThreshold:      0.75,
		MaxFailedAttempts:     5,
		LockoutDuration:       5 * time.Minute,
		RequireLiveness:       true,
		DetectHealthAnomalies: true,
		RequireFastingSample:  false,
		DriftTolerance:        0.10,
	}
}
