package health

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/lifeauth/internal/plasma"
)

// healthySignature carries typical adult reference values.
func healthySignature() *plasma.Signature {
	s := &plasma.Signature{}
	s.Metabolites.Glucose.Value = 95
	s.Metabolites.Urea.Value = 15
	s.Metabolites.Creatinine.Value = 1.0
	s.Lipids.TotalCholesterol.Value = 200
	s.Lipids.LDL.Value = 120
	s.Enzymes.ALT.Value = 25
	s.Enzymes.AST.Value = 22
	s.Electrolytes.Sodium.Value = 140
	s.Electrolytes.Potassium.Value = 4.2
	return s
}

func TestCheck_HealthyIsSilent(t *testing.T) {
	baseline := healthySignature()
	r := Check(healthySignature(), baseline)

	assert.False(t, r.AnyFlag())
	assert.Empty(t, r.Summary)
}

func TestCheck_Flags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*plasma.Signature)
		flag   func(Report) bool
		phrase string
	}{
		{
			name:   "high glucose",
			mutate: func(s *plasma.Signature) { s.Metabolites.Glucose.Value = 200 },
			flag:   func(r Report) bool { return r.GlucoseAbnormal },
			phrase: "Glucose outside range.",
		},
		{
			name:   "low glucose",
			mutate: func(s *plasma.Signature) { s.Metabolites.Glucose.Value = 60 },
			flag:   func(r Report) bool { return r.GlucoseAbnormal },
			phrase: "Glucose outside range.",
		},
		{
			name:   "high cholesterol",
			mutate: func(s *plasma.Signature) { s.Lipids.TotalCholesterol.Value = 250 },
			flag:   func(r Report) bool { return r.LipidAbnormal },
			phrase: "Lipid levels high.",
		},
		{
			name:   "high ldl",
			mutate: func(s *plasma.Signature) { s.Lipids.LDL.Value = 170 },
			flag:   func(r Report) bool { return r.LipidAbnormal },
			phrase: "Lipid levels high.",
		},
		{
			name:   "alt drift beyond half of baseline",
			mutate: func(s *plasma.Signature) { s.Enzymes.ALT.Value = 40 },
			flag:   func(r Report) bool { return r.LiverEnzymesAbnormal },
			phrase: "Liver enzyme changes.",
		},
		{
			name:   "high creatinine",
			mutate: func(s *plasma.Signature) { s.Metabolites.Creatinine.Value = 1.5 },
			flag:   func(r Report) bool { return r.KidneyMarkersAbnormal },
			phrase: "Kidney markers elevated.",
		},
		{
			name:   "high urea",
			mutate: func(s *plasma.Signature) { s.Metabolites.Urea.Value = 30 },
			flag:   func(r Report) bool { return r.KidneyMarkersAbnormal },
			phrase: "Kidney markers elevated.",
		},
		{
			name:   "low sodium",
			mutate: func(s *plasma.Signature) { s.Electrolytes.Sodium.Value = 130 },
			flag:   func(r Report) bool { return r.ElectrolyteImbalance },
			phrase: "Electrolyte imbalance.",
		},
		{
			name:   "high potassium",
			mutate: func(s *plasma.Signature) { s.Electrolytes.Potassium.Value = 5.5 },
			flag:   func(r Report) bool { return r.ElectrolyteImbalance },
			phrase: "Electrolyte imbalance.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := healthySignature()
			tt.mutate(current)

			r := Check(current, healthySignature())
			assert.True(t, tt.flag(r))
			assert.True(t, r.AnyFlag())
			assert.Contains(t, r.Summary, tt.phrase)
		})
	}
}

func TestCheck_BoundariesAreNormal(t *testing.T) {
	current := healthySignature()
	current.Metabolites.Glucose.Value = 126
	r := Check(current, healthySignature())
	assert.False(t, r.GlucoseAbnormal)

	current.Metabolites.Glucose.Value = 70
	r = Check(current, healthySignature())
	assert.False(t, r.GlucoseAbnormal)

	// drift of exactly half the baseline does not flag
	current = healthySignature()
	current.Enzymes.ALT.Value = 37.5
	r = Check(current, healthySignature())
	assert.False(t, r.LiverEnzymesAbnormal)
}

func TestCheck_SummaryOrdersGlucoseFirst(t *testing.T) {
	current := healthySignature()
	current.Metabolites.Glucose.Value = 200
	current.Metabolites.Creatinine.Value = 1.6
	current.Electrolytes.Potassium.Value = 5.4

	r := Check(current, healthySignature())
	assert.True(t, strings.HasPrefix(r.Summary, "Glucose outside range."))
	assert.Contains(t, r.Summary, "Kidney markers elevated.")
	assert.Contains(t, r.Summary, "Electrolyte imbalance.")
}

func TestCheck_InflammationReserved(t *testing.T) {
	current := healthySignature()
	current.Metabolites.Glucose.Value = 300
	current.Lipids.LDL.Value = 300
	current.Enzymes.AST.Value = 90

	r := Check(current, healthySignature())
	assert.False(t, r.InflammationDetected)
}

func TestCheck_NilInputs(t *testing.T) {
	assert.Equal(t, Report{}, Check(nil, healthySignature()))
	assert.Equal(t, Report{}, Check(healthySignature(), nil))
}
