// Package sensor abstracts plasma sample acquisition. A Provider produces
// plasma signatures with per-sample quality and liveness measurements; the
// only implementation in this module is the reference simulator, which
// synthesizes a stable per-instance subject so that repeated samples compare
// like repeated draws from one person.
package sensor

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
	"github.com/dmitrijs2005/lifeauth/internal/plasma"
)

// Default thresholds the simulator scores its own quality and liveness
// booleans against. The engine re-evaluates the raw scores against its
// configured thresholds; these exist so a provider is usable standalone.
const (
	DefaultQualityThreshold  = 0.75
	DefaultLivenessThreshold = 0.90
)

// State is the sensor lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateInitializing
	StateReady
	StateSampling
	StateAnalyzing
	StateError
	StateCalibrating
	StateCleaning
)

var stateNames = map[State]string{
	StateDisconnected: "Disconnected",
	StateInitializing: "Initializing",
	StateReady:        "Ready",
	StateSampling:     "Sampling",
	StateAnalyzing:    "Analyzing",
	StateError:        "Error",
	StateCalibrating:  "Calibrating",
	StateCleaning:     "Cleaning",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown state"
}

// Type identifies the sampling technology of a sensor.
type Type int

const (
	TypeMicroneedle Type = iota
	TypeSpectroscopic
	TypeMicrofluidic
	TypeElectrochemical
	TypeSimulated
)

var typeNames = map[Type]string{
	TypeMicroneedle:     "microneedle",
	TypeSpectroscopic:   "spectroscopic",
	TypeMicrofluidic:    "microfluidic",
	TypeElectrochemical: "electrochemical",
	TypeSimulated:       "simulated",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Info describes a sensor device and its capabilities.
type Info struct {
	Vendor           string
	Model            string
	Serial           string
	Firmware         string
	Type             Type
	MarkersSupported uint32
	HasSpectroscopy  bool
	HasMicrofluidics bool
	HasSelfCleaning  bool
	SampleVolumeUL   uint32
	AnalysisTimeMS   uint32
}

// SampleQuality reports per-sample quality scores, each in [0,1].
// IsAcceptable is scored against DefaultQualityThreshold; gating decisions
// use the engine's configured threshold instead.
type SampleQuality struct {
	Purity        float32
	Concentration float32
	Freshness     float32
	HemolysisFree float32
	LipemiaFree   float32
	// Overall averages purity, concentration, hemolysis and lipemia;
	// freshness is reported but excluded.
	Overall      float32
	IsAcceptable bool
}

// Liveness reports the vitality measurements derived from a sample.
// Overall averages pulse, enzyme activity and cell viability; temperature,
// oxygen saturation and glucose dynamics are reported but excluded.
type Liveness struct {
	Temperature      float32 // degrees C
	OxygenSaturation float32 // percent
	PulseDetected    float32
	GlucoseDynamics  float32
	EnzymeActivity   float32
	CellViability    float32
	Overall          float32
	IsLive           bool
}

// Provider is the capability surface the engine needs from a sensor.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Info describes the device.
	Info() Info
	// State reports the current lifecycle state.
	State() State
	// Sample collects and analyzes one plasma sample. The returned signature
	// has derived features, fingerprint and entropy populated.
	Sample(ctx context.Context) (*plasma.Signature, *SampleQuality, error)
	// CheckLiveness derives vitality measurements from the sensor.
	CheckLiveness(ctx context.Context) (*Liveness, error)
	// Clean runs a self-cleaning cycle.
	Clean(ctx context.Context) error
	// Calibrate runs a calibration cycle.
	Calibrate(ctx context.Context) error
	// Close releases the device. Further calls fail with a no-sensor error.
	Close() error
}

// Open connects to the sensor at devicePath. An empty path or a path with
// the "sim:" prefix opens the reference simulator; other paths fail because
// no hardware backends are wired in.
func Open(devicePath string, opts ...SimOption) (Provider, error) {
	if devicePath == "" || strings.HasPrefix(devicePath, "sim:") {
		return NewSimulator(opts...)
	}
	return nil, autherr.E(autherr.NoSensor, fmt.Sprintf("no device at %q", devicePath))
}
