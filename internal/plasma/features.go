package plasma

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// DeriveFeatures recomputes every derived stable feature from the named
// markers and marker arrays: the A/G ratio, normalized IgG subclass
// fractions, the metabolome hash, the enzyme signature and the lipid ratios.
// Providers call this after filling or perturbing raw readings so the
// derived features and the raw values can never disagree.
func (s *Signature) DeriveFeatures() {
	s.deriveAGRatio()
	s.normalizeIgGSubclasses()
	s.Metabolites.MetabolomeHash = MetabolomeHash(s.Metabolites.Markers[:])
	s.deriveEnzymeSignature()
	s.deriveLipidRatios()
}

func (s *Signature) deriveAGRatio() {
	p := &s.Proteins
	globulin := p.Alpha1Globulin.Value + p.Alpha2Globulin.Value +
		p.BetaGlobulin.Value + p.GammaGlobulin.Value
	if globulin <= 0 {
		p.AGRatio = 0
		return
	}
	p.AGRatio = p.Albumin.Value / globulin
}

func (s *Signature) normalizeIgGSubclasses() {
	var sum float32
	for _, r := range s.Antibodies.IgGSubclassRatios {
		sum += r
	}
	if sum <= 0 {
		return
	}
	for i := range s.Antibodies.IgGSubclassRatios {
		s.Antibodies.IgGSubclassRatios[i] /= sum
	}
}

func (s *Signature) deriveEnzymeSignature() {
	e := &s.Enzymes
	total := e.ALT.Value + e.AST.Value + e.ALP.Value + e.GGT.Value + e.LDH.Value

	var sig [8]float32
	if total > 0 {
		sig[0] = e.ALT.Value / total
		sig[1] = e.AST.Value / total
		sig[2] = e.ALP.Value / total
		sig[3] = e.GGT.Value / total
		sig[4] = e.LDH.Value / total
	}
	if e.ALT.Value > 0 {
		sig[5] = e.AST.Value / e.ALT.Value
	}
	if e.ALP.Value > 0 {
		sig[6] = e.GGT.Value / e.ALP.Value
	}
	// slot 7 reserved
	e.Signature = sig
}

func (s *Signature) deriveLipidRatios() {
	l := &s.Lipids
	if l.HDL.Value <= 0 {
		l.Ratios = [4]float32{}
		return
	}
	l.Ratios[0] = l.TotalCholesterol.Value / l.HDL.Value
	l.Ratios[1] = l.LDL.Value / l.HDL.Value
	l.Ratios[2] = l.Triglycerides.Value / l.HDL.Value
	l.Ratios[3] = (l.TotalCholesterol.Value - l.HDL.Value) / l.HDL.Value
}

// MetabolomeHash computes the 32-bit rolling hash over a metabolite marker
// array. The hash is a pure function of the markers: values are quantized to
// three decimals so float noise below measurement resolution cannot shift
// it, and the marker ids participate so reordering changes the hash.
func MetabolomeHash(markers []Marker) uint32 {
	h := fnv.New32a()
	var buf [6]byte
	for i := range markers {
		binary.LittleEndian.PutUint16(buf[0:2], markers[i].ID)
		q := int32(math.Round(float64(markers[i].Value) * 1000))
		binary.LittleEndian.PutUint32(buf[2:6], uint32(q))
		h.Write(buf[:])
	}
	return h.Sum32()
}
