// Package plasma defines the biometric feature vector used as the key in
// plasma-signature authentication: six biomarker profiles of named and
// anonymous markers, the derived stable features (A/G ratio, IgG subclass
// fractions, metabolome hash, enzyme signature, lipid ratios), a compact
// 64-byte fingerprint, and the canonical little-endian byte encoding that
// hashing and encryption operate on.
package plasma

// Marker counts per profile. The anonymous marker arrays carry the bulk of
// the feature vector; the named fields below are markers too.
const (
	ProteinMarkers     = 32
	AntibodyMarkers    = 24
	MetaboliteMarkers  = 48
	LipidMarkers       = 16
	EnzymeMarkers      = 12
	ElectrolyteMarkers = 8

	TotalMarkers = ProteinMarkers + AntibodyMarkers + MetaboliteMarkers +
		LipidMarkers + EnzymeMarkers + ElectrolyteMarkers
)

// Marker id bases per profile; anonymous marker i of a profile has id base+i.
const (
	ProteinIDBase     uint16 = 100
	AntibodyIDBase    uint16 = 200
	MetaboliteIDBase  uint16 = 300
	LipidIDBase       uint16 = 400
	EnzymeIDBase      uint16 = 500
	ElectrolyteIDBase uint16 = 600
)

// FingerprintSize is the length of the compact signature fingerprint.
const FingerprintSize = 64

// Marker is a single biomarker reading.
type Marker struct {
	ID         uint16
	Value      float32 // concentration or activity level
	Variance   float32
	Confidence uint8 // 0-100
}

// ProteinProfile covers serum proteins. Concentrations in g/dL except
// fibrinogen, transferrin and ceruloplasmin (mg/dL).
type ProteinProfile struct {
	Albumin        Marker
	Alpha1Globulin Marker
	Alpha2Globulin Marker
	BetaGlobulin   Marker
	GammaGlobulin  Marker
	Fibrinogen     Marker
	Transferrin    Marker
	Ceruloplasmin  Marker
	Markers        [ProteinMarkers]Marker
	AGRatio        float32 // albumin / total globulin; stable identifier
}

// AntibodyProfile covers immunoglobulins (mg/dL).
type AntibodyProfile struct {
	IgGTotal Marker
	IgATotal Marker
	IgMTotal Marker
	IgETotal Marker
	Markers  [AntibodyMarkers]Marker
	// IgGSubclassRatios are the IgG1..IgG4 fractions; they sum to ~1 and are
	// among the most stable within-person features.
	IgGSubclassRatios [4]float32
}

// MetaboliteProfile covers small-molecule metabolites (mg/dL).
type MetaboliteProfile struct {
	Glucose    Marker
	Urea       Marker
	Creatinine Marker
	UricAcid   Marker
	Bilirubin  Marker
	Markers    [MetaboliteMarkers]Marker
	// MetabolomeHash is a 32-bit rolling hash over the marker array, used as
	// a coarse exact-match identity check.
	MetabolomeHash uint32
}

// LipidProfile covers blood lipids (mg/dL).
type LipidProfile struct {
	TotalCholesterol Marker
	HDL              Marker
	LDL              Marker
	Triglycerides    Marker
	Markers          [LipidMarkers]Marker
	// Ratios holds chol/HDL, LDL/HDL, trig/HDL and (chol-HDL)/HDL.
	Ratios [4]float32
}

// EnzymeProfile covers enzyme activities (U/L).
type EnzymeProfile struct {
	ALT     Marker // alanine aminotransferase
	AST     Marker // aspartate aminotransferase
	ALP     Marker // alkaline phosphatase
	GGT     Marker // gamma-glutamyl transferase
	LDH     Marker // lactate dehydrogenase
	Markers [EnzymeMarkers]Marker
	// Signature slots 0..4 are the normalized activity fractions of the five
	// enzymes, slot 5 is AST/ALT, slot 6 is GGT/ALP, slot 7 is reserved.
	Signature [8]float32
}

// ElectrolyteProfile covers serum electrolytes (mEq/L or mg/dL).
type ElectrolyteProfile struct {
	Sodium      Marker
	Potassium   Marker
	Chloride    Marker
	Bicarbonate Marker
	Calcium     Marker
	Magnesium   Marker
	Phosphate   Marker
	Markers     [ElectrolyteMarkers]Marker
}

// Signature is the complete plasma signature. Field order is binding: the
// canonical encoding in Encode writes fields in declaration order.
type Signature struct {
	Proteins     ProteinProfile
	Antibodies   AntibodyProfile
	Metabolites  MetaboliteProfile
	Lipids       LipidProfile
	Enzymes      EnzymeProfile
	Electrolytes ElectrolyteProfile

	Fingerprint       [FingerprintSize]byte
	EntropyBits       uint32
	SampleTimestamp   uint64 // milliseconds since epoch
	OverallConfidence float32
	StabilityScore    float32
	IsFastingSample   bool
}

// Wipe zeroes the signature in place. Decrypted signatures are sensitive key
// material and must be wiped on every exit path.
func (s *Signature) Wipe() {
	*s = Signature{}
}
