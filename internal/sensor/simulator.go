package sensor

import (
	"context"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
	"github.com/dmitrijs2005/lifeauth/internal/cryptox"
	"github.com/dmitrijs2005/lifeauth/internal/plasma"
	"github.com/dmitrijs2005/lifeauth/internal/shared"
)

// Simulator is the reference software sensor. Each instance synthesizes one
// subject on its first sample and replays that baseline with bounded
// measurement noise afterwards, so samples from a single instance behave
// like repeated draws from the same person.
type Simulator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	info        Info
	state       State
	baseline    *plasma.Signature
	sampleCount uint32
	fault       autherr.Kind
	glucose     *float32
	fasting     *bool
}

var _ Provider = (*Simulator)(nil)

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithSeed fixes the random stream so the synthesized subject and all
// subsequent noise are reproducible.
func WithSeed(seed uint64) SimOption {
	return func(s *Simulator) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithFasting forces the fasting flag of the synthesized baseline instead of
// choosing it randomly.
func WithFasting(fasting bool) SimOption {
	return func(s *Simulator) { s.fasting = &fasting }
}

// WithFault makes sensor operations fail with the given kind until the
// fault is cleared via InjectFault(autherr.Ok).
func WithFault(kind autherr.Kind) SimOption {
	return func(s *Simulator) { s.fault = kind }
}

// WithGlucoseOverride pins the glucose reading of every returned sample.
func WithGlucoseOverride(mgdl float32) SimOption {
	return func(s *Simulator) { s.glucose = &mgdl }
}

// NewSimulator opens a simulated sensor. Without WithSeed the subject is
// seeded from the system RNG, giving a new identity per instance.
func NewSimulator(opts ...SimOption) (*Simulator, error) {
	serial, err := shared.MakeRandHexString(4)
	if err != nil {
		return nil, autherr.E(autherr.InitFailed, "generating sensor serial", err)
	}

	s := &Simulator{
		state: StateInitializing,
		info: Info{
			Vendor:           "LifeAuth",
			Model:            "Plasma Analyzer SIM-1",
			Serial:           "LA-SIM-" + serial,
			Firmware:         "1.0.0",
			Type:             TypeSimulated,
			MarkersSupported: plasma.TotalMarkers,
			HasSpectroscopy:  true,
			HasMicrofluidics: true,
			HasSelfCleaning:  true,
			SampleVolumeUL:   50,
			AnalysisTimeMS:   3000,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		seed, err := randomSeed()
		if err != nil {
			return nil, err
		}
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}

	s.state = StateReady
	return s, nil
}

func randomSeed() (uint64, error) {
	b, err := cryptox.RandBytes(8)
	if err != nil {
		return 0, autherr.E(autherr.InitFailed, "seeding sensor", err)
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Info implements Provider.
func (s *Simulator) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// State implements Provider.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SampleCount reports how many samples this instance has produced.
func (s *Simulator) SampleCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleCount
}

// InjectFault forces subsequent sensor operations to fail with the given
// kind; autherr.Ok clears the fault. The sensor stays in the error state
// until cleaned or calibrated.
func (s *Simulator) InjectFault(kind autherr.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = kind
}

// OverrideGlucose pins the glucose reading of subsequent samples, e.g. to
// replay a subject after a meal.
func (s *Simulator) OverrideGlucose(mgdl float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.glucose = &mgdl
}

// Sample implements Provider. The first call synthesizes and caches the
// subject baseline; later calls re-draw it with bounded measurement noise.
// Derived features, fingerprint and entropy are recomputed per sample so
// the fingerprint always matches the returned contents.
func (s *Simulator) Sample(ctx context.Context) (*plasma.Signature, *SampleQuality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(ctx); err != nil {
		return nil, nil, err
	}

	s.state = StateSampling
	sig := s.nextSignature()
	s.state = StateAnalyzing
	s.sampleCount++

	sig.DeriveFeatures()
	sig.ComputeFingerprint()
	sig.EntropyBits = sig.CalculateEntropy()

	q := s.measureQuality()
	s.state = StateReady
	return sig, q, nil
}

// CheckLiveness implements Provider.
func (s *Simulator) CheckLiveness(ctx context.Context) (*Liveness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(ctx); err != nil {
		return nil, err
	}

	lv := &Liveness{
		Temperature:      36.5 + s.rng.Float32(),
		OxygenSaturation: 96 + s.rng.Float32()*3,
		PulseDetected:    0.98,
		GlucoseDynamics:  0.85 + s.rng.Float32()*0.1,
		EnzymeActivity:   0.92 + s.rng.Float32()*0.08,
		CellViability:    0.95,
	}
	lv.Overall = (lv.PulseDetected + lv.EnzymeActivity + lv.CellViability) / 3
	lv.IsLive = lv.Overall >= DefaultLivenessThreshold
	return lv, nil
}

// Clean implements Provider. The simulated wash program completes
// immediately and resets an error state.
func (s *Simulator) Clean(ctx context.Context) error {
	return s.cycle(ctx)
}

// Calibrate implements Provider. The simulated calibration completes
// immediately and resets an error state.
func (s *Simulator) Calibrate(ctx context.Context) error {
	return s.cycle(ctx)
}

func (s *Simulator) cycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return autherr.E(autherr.Timeout, "sensor operation aborted", err)
	}
	if s.state == StateDisconnected {
		return autherr.E(autherr.NoSensor, "sensor is closed")
	}

	s.state = StateReady
	return nil
}

// Close implements Provider. The cached baseline holds biometric material
// and is wiped.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.baseline != nil {
		s.baseline.Wipe()
		s.baseline = nil
	}
	s.state = StateDisconnected
	return nil
}

func (s *Simulator) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return autherr.E(autherr.Timeout, "sensor operation aborted", err)
	}
	if s.state == StateDisconnected {
		return autherr.E(autherr.NoSensor, "sensor is closed")
	}
	if s.fault != autherr.Ok {
		s.state = StateError
		return autherr.E(s.fault, "injected sensor fault")
	}
	return nil
}

func (s *Simulator) nextSignature() *plasma.Signature {
	var sig plasma.Signature
	if s.baseline == nil {
		sig = s.synthesize()
		base := sig
		s.baseline = &base
	} else {
		sig = *s.baseline
		// repeat draws of one subject differ only by assay noise
		sig.Proteins.Albumin.Value += s.uniform(-0.05, 0.05)
		sig.Metabolites.Glucose.Value += s.uniform(-3.0, 3.0)
		sig.SampleTimestamp = nowMillis()
	}
	if s.glucose != nil {
		sig.Metabolites.Glucose.Value = *s.glucose
	}
	return &sig
}

// synthesize draws a fresh subject. Identity lives in the gaussian albumin,
// globulin, IgG and subclass levels; the uniform terms model assay spread
// around typical adult reference ranges.
func (s *Simulator) synthesize() plasma.Signature {
	var sig plasma.Signature
	s.synthProteins(&sig.Proteins)
	s.synthAntibodies(&sig.Antibodies)
	s.synthMetabolites(&sig.Metabolites)
	s.synthLipids(&sig.Lipids)
	s.synthEnzymes(&sig.Enzymes)
	s.synthElectrolytes(&sig.Electrolytes)

	sig.SampleTimestamp = nowMillis()
	sig.OverallConfidence = 0.92 + s.uniform(-0.05, 0.05)
	sig.StabilityScore = 0.88
	if s.fasting != nil {
		sig.IsFastingSample = *s.fasting
	} else {
		sig.IsFastingSample = s.rng.IntN(2) == 0
	}
	return sig
}

func (s *Simulator) synthProteins(p *plasma.ProteinProfile) {
	albumin := 4.0 + s.gauss()*0.3
	globulin := 2.5 + s.gauss()*0.2

	p.Albumin = plasma.Marker{Value: albumin, Confidence: 95}
	p.Alpha1Globulin.Value = 0.2 + s.uniform(-0.02, 0.02)
	p.Alpha2Globulin.Value = 0.6 + s.uniform(-0.05, 0.05)
	p.BetaGlobulin.Value = 0.8 + s.uniform(-0.05, 0.05)
	gamma := globulin - 1.6 + s.uniform(-0.1, 0.1)
	if gamma < 0.1 {
		// keep concentrations positive in the far tail
		gamma = 0.1
	}
	p.GammaGlobulin.Value = gamma
	p.Fibrinogen.Value = 300 + s.uniform(-30, 30)
	p.Transferrin.Value = 250 + s.uniform(-20, 20)
	p.Ceruloplasmin.Value = 30 + s.uniform(-5, 5)

	for i := range p.Markers {
		p.Markers[i] = plasma.Marker{
			ID:         plasma.ProteinIDBase + uint16(i),
			Value:      s.uniform(0.1, 10),
			Confidence: 80 + uint8(s.rng.IntN(20)),
		}
	}
}

func (s *Simulator) synthAntibodies(a *plasma.AntibodyProfile) {
	a.IgGTotal = plasma.Marker{Value: 1000 + s.gauss()*100, Confidence: 95}
	a.IgATotal.Value = 200 + s.uniform(-20, 20)
	a.IgMTotal.Value = 100 + s.uniform(-15, 15)
	a.IgETotal.Value = 50 + s.uniform(-10, 10)

	// raw subclass estimates; DeriveFeatures normalizes them to fractions
	a.IgGSubclassRatios = [4]float32{
		0.60 + s.uniform(-0.02, 0.02),
		0.25 + s.uniform(-0.01, 0.01),
		0.08 + s.uniform(-0.005, 0.005),
		0.07 + s.uniform(-0.005, 0.005),
	}

	for i := range a.Markers {
		a.Markers[i] = plasma.Marker{
			ID:         plasma.AntibodyIDBase + uint16(i),
			Value:      s.uniform(1, 100),
			Confidence: 85 + uint8(s.rng.IntN(15)),
		}
	}
}

func (s *Simulator) synthMetabolites(m *plasma.MetaboliteProfile) {
	m.Glucose.Value = 95 + s.uniform(-10, 20)
	m.Urea.Value = 15 + s.uniform(-3, 3)
	m.Creatinine.Value = 1.0 + s.uniform(-0.1, 0.1)
	m.UricAcid.Value = 5 + s.uniform(-1, 1)
	m.Bilirubin.Value = 0.8 + s.uniform(-0.2, 0.2)

	for i := range m.Markers {
		m.Markers[i] = plasma.Marker{
			ID:    plasma.MetaboliteIDBase + uint16(i),
			Value: s.uniform(0.01, 5),
		}
	}
}

func (s *Simulator) synthLipids(l *plasma.LipidProfile) {
	l.TotalCholesterol.Value = 200 + s.uniform(-20, 20)
	l.HDL.Value = 55 + s.uniform(-5, 5)
	l.LDL.Value = 120 + s.uniform(-15, 15)
	l.Triglycerides.Value = 150 + s.uniform(-30, 30)

	for i := range l.Markers {
		l.Markers[i] = plasma.Marker{
			ID:    plasma.LipidIDBase + uint16(i),
			Value: s.uniform(0.5, 50),
		}
	}
}

func (s *Simulator) synthEnzymes(e *plasma.EnzymeProfile) {
	e.ALT.Value = 25 + s.uniform(-5, 5)
	e.AST.Value = 22 + s.uniform(-4, 4)
	e.ALP.Value = 70 + s.uniform(-10, 10)
	e.GGT.Value = 30 + s.uniform(-8, 8)
	e.LDH.Value = 180 + s.uniform(-20, 20)

	for i := range e.Markers {
		e.Markers[i] = plasma.Marker{
			ID:    plasma.EnzymeIDBase + uint16(i),
			Value: s.uniform(5, 100),
		}
	}
}

func (s *Simulator) synthElectrolytes(el *plasma.ElectrolyteProfile) {
	el.Sodium.Value = 140 + s.uniform(-2, 2)
	el.Potassium.Value = 4.2 + s.uniform(-0.3, 0.3)
	el.Chloride.Value = 102 + s.uniform(-2, 2)
	el.Bicarbonate.Value = 24 + s.uniform(-2, 2)
	el.Calcium.Value = 9.5 + s.uniform(-0.3, 0.3)
	el.Magnesium.Value = 2.0 + s.uniform(-0.2, 0.2)
	el.Phosphate.Value = 3.5 + s.uniform(-0.3, 0.3)

	for i := range el.Markers {
		el.Markers[i] = plasma.Marker{
			ID:    plasma.ElectrolyteIDBase + uint16(i),
			Value: s.uniform(0.1, 10),
		}
	}
}

func (s *Simulator) measureQuality() *SampleQuality {
	q := &SampleQuality{
		Purity:        0.95 + s.rng.Float32()*0.05,
		Concentration: 0.92 + s.rng.Float32()*0.08,
		Freshness:     1.0,
		HemolysisFree: 0.98,
		LipemiaFree:   0.96,
	}
	q.Overall = (q.Purity + q.Concentration + q.HemolysisFree + q.LipemiaFree) / 4
	q.IsAcceptable = q.Overall >= DefaultQualityThreshold
	return q
}

func (s *Simulator) uniform(min, max float32) float32 {
	return min + s.rng.Float32()*(max-min)
}

func (s *Simulator) gauss() float32 {
	return float32(s.rng.NormFloat64())
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
