// Package health screens an authenticated sample for medical deviations
// against the enrolled baseline. Findings are advisory: they decorate a
// successful authentication and never fail it.
package health

import (
	"strings"

	"github.com/dmitrijs2005/lifeauth/internal/plasma"
)

// Fixed screening limits in conventional clinical units.
const (
	glucoseMin = 70.0 // mg/dL
	glucoseMax = 126.0

	cholesterolMax = 240.0 // mg/dL
	ldlMax         = 160.0

	// liver enzymes are compared against the subject's own baseline
	enzymeDriftLimit = 0.5

	creatinineMax = 1.4 // mg/dL
	ureaMax       = 25.0

	sodiumMin    = 135.0 // mEq/L
	sodiumMax    = 145.0
	potassiumMin = 3.5
	potassiumMax = 5.0
)

// Report carries the independent deviation flags and a human-readable
// summary of the set ones.
type Report struct {
	GlucoseAbnormal       bool
	LipidAbnormal         bool
	LiverEnzymesAbnormal  bool
	KidneyMarkersAbnormal bool
	ElectrolyteImbalance  bool
	// InflammationDetected is reserved for a future marker panel and is
	// never set.
	InflammationDetected bool
	Summary              string
}

// AnyFlag reports whether any deviation was detected.
func (r Report) AnyFlag() bool {
	return r.GlucoseAbnormal || r.LipidAbnormal || r.LiverEnzymesAbnormal ||
		r.KidneyMarkersAbnormal || r.ElectrolyteImbalance || r.InflammationDetected
}

// Check screens the current sample. Glucose, lipid, kidney and electrolyte
// limits are absolute; liver enzymes flag on drift relative to the baseline.
// Nil inputs produce an empty report.
func Check(current, baseline *plasma.Signature) Report {
	var r Report
	if current == nil || baseline == nil {
		return r
	}

	glucose := current.Metabolites.Glucose.Value
	r.GlucoseAbnormal = glucose < glucoseMin || glucose > glucoseMax

	r.LipidAbnormal = current.Lipids.TotalCholesterol.Value > cholesterolMax ||
		current.Lipids.LDL.Value > ldlMax

	altDrift := abs32(current.Enzymes.ALT.Value - baseline.Enzymes.ALT.Value)
	astDrift := abs32(current.Enzymes.AST.Value - baseline.Enzymes.AST.Value)
	r.LiverEnzymesAbnormal = altDrift > baseline.Enzymes.ALT.Value*enzymeDriftLimit ||
		astDrift > baseline.Enzymes.AST.Value*enzymeDriftLimit

	r.KidneyMarkersAbnormal = current.Metabolites.Creatinine.Value > creatinineMax ||
		current.Metabolites.Urea.Value > ureaMax

	na := current.Electrolytes.Sodium.Value
	k := current.Electrolytes.Potassium.Value
	r.ElectrolyteImbalance = na < sodiumMin || na > sodiumMax ||
		k < potassiumMin || k > potassiumMax

	r.Summary = summarize(r)
	return r
}

func summarize(r Report) string {
	var b strings.Builder
	if r.GlucoseAbnormal {
		b.WriteString("Glucose outside range. ")
	}
	if r.LiverEnzymesAbnormal {
		b.WriteString("Liver enzyme changes. ")
	}
	if r.KidneyMarkersAbnormal {
		b.WriteString("Kidney markers elevated. ")
	}
	if r.LipidAbnormal {
		b.WriteString("Lipid levels high. ")
	}
	if r.ElectrolyteImbalance {
		b.WriteString("Electrolyte imbalance. ")
	}
	return strings.TrimSpace(b.String())
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
