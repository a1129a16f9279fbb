// Package autherr defines the closed error taxonomy of the LifeAuth engine.
// Every fallible operation in the module reports one of the kinds below;
// callers match on kinds with Is and render them with the stable strings
// returned by Kind.String. Errors can be chained to an underlying cause and
// participate in errors.Is / errors.As unwrapping.
package autherr

import (
	"errors"
	"strings"
)

// Kind is the semantic class of an authentication error. The set is closed:
// new kinds are not added at runtime and the strings below are part of the
// public contract (they are shown to operators and asserted by tests).
type Kind int

const (
	// Ok indicates success. It never appears inside an Error; it exists so
	// the taxonomy covers every engine status code.
	Ok Kind = iota
	// NoSensor indicates no sensor was found at the requested device path.
	NoSensor
	// InitFailed indicates invalid initialization input or state.
	InitFailed
	// SampleFailed indicates sample collection or liveness derivation failed.
	SampleFailed
	// NoContact indicates no finger contact with the sensor.
	NoContact
	// InsufficientSample indicates too little plasma was collected.
	InsufficientSample
	// Contamination indicates the sample was contaminated.
	Contamination
	// PoorQuality indicates the sample failed the quality gate.
	PoorQuality
	// Timeout indicates the operation timed out.
	Timeout
	// CalibrationRequired indicates the sensor needs calibration first.
	CalibrationRequired
	// ProfileMismatch indicates the biometric comparison fell below the
	// match threshold, or the decrypted signature failed verification.
	ProfileMismatch
	// Memory indicates an undersized caller-provided buffer.
	Memory
	// Permission indicates the caller is not allowed to perform the operation.
	Permission
	// Locked indicates the credential is locked after repeated failures.
	Locked
	// CryptoFailure indicates a KDF, RNG or AEAD failure, including tag
	// verification failure on a wrong password.
	CryptoFailure
	// HealthAlert indicates a health anomaly was detected. It is carried on
	// successful match results and is never a primary return value.
	HealthAlert
)

var kinds = map[Kind]string{
	Ok:                  "Success",
	NoSensor:            "No sensor found",
	InitFailed:          "Initialization failed",
	SampleFailed:        "Sample collection failed",
	NoContact:           "No finger contact",
	InsufficientSample:  "Insufficient sample",
	Contamination:       "Sample contamination",
	PoorQuality:         "Poor sample quality",
	Timeout:             "Operation timed out",
	CalibrationRequired: "Calibration required",
	ProfileMismatch:     "Profile mismatch",
	Memory:              "Memory allocation failed",
	Permission:          "Permission denied",
	Locked:              "Account locked",
	CryptoFailure:       "Cryptographic error",
	HealthAlert:         "Health anomaly detected",
}

// String returns the stable human-readable name of the kind.
func (k Kind) String() string {
	return kinds[k]
}

// Error is the error type produced by E. It carries a kind, an optional
// message, and an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error renders the kind string, the message, and the cause chain separated
// by ": ".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// E constructs an *Error from the arguments. Arguments are interpreted by
// type: Kind sets the kind, string arguments join into the message, an error
// becomes the cause. If no kind is given but the cause is itself an *Error,
// the kind is inherited from it.
func E(args ...any) error {
	if len(args) == 0 {
		panic("autherr.E: no arguments")
	}
	e := &Error{}
	kindSet := false
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
			kindSet = true
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case error:
			e.Err = arg
		default:
			panic("autherr.E: unsupported argument type")
		}
	}
	e.Message = msg.String()
	if !kindSet {
		var prev *Error
		if errors.As(e.Err, &prev) {
			e.Kind = prev.Kind
		}
	}
	return e
}

// Is reports whether err, anywhere in its chain, carries kind k.
func Is(k Kind, err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Kind == k {
		return true
	}
	if e.Err != nil {
		return Is(k, e.Err)
	}
	return false
}

// KindOf returns the kind of the outermost *Error in the chain, or Ok for a
// nil error. The second return value is false when err is non-nil but carries
// no *Error anywhere in its chain; no kind is guessed in that case.
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return Ok, true
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Ok, false
}
