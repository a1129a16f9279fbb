// Package scoring compares two plasma signatures and produces an overall
// similarity in [0,1] together with per-subsystem sub-scores. Four subsystems
// carry fixed weights; the remaining sub-scores are reported for diagnostics
// and never contribute to the overall.
package scoring

import "github.com/dmitrijs2005/lifeauth/internal/plasma"

// Subsystem weights. The A/G ratio and the IgG subclass fractions are the
// most stable within-person features and dominate the score; lipid ratios
// drift with diet and carry the smallest weight.
const (
	agWeight       = 3.0
	antibodyWeight = 4.0
	enzymeWeight   = 2.0
	lipidWeight    = 1.0
	weightSum      = agWeight + antibodyWeight + enzymeWeight + lipidWeight
)

// electrolyteScore is a fixed placeholder: electrolyte levels are tightly
// regulated across the population and carry no discriminative signal here.
const electrolyteScore = 0.95

// scoredEnzymeSlots limits the enzyme term to the activity fractions and the
// AST/ALT ratio; slots 6 (GGT/ALP) and 7 (reserved) stay out of the score.
const scoredEnzymeSlots = 6

// Result holds the overall similarity and the six per-subsystem sub-scores.
// Protein, Metabolite and Electrolyte are diagnostic only: they are reported
// but excluded from the weighted Overall.
type Result struct {
	Overall     float32
	Protein     float32
	Antibody    float32
	Metabolite  float32
	Lipid       float32
	Enzyme      float32
	Electrolyte float32
}

// Compare scores the similarity of two signatures. The result is symmetric
// in its arguments, every score lies in [0,1], and comparing a signature
// with itself yields exactly 1.0.
func Compare(a, b *plasma.Signature) Result {
	if a == nil || b == nil {
		return Result{}
	}

	ag := agSimilarity(a, b)
	igg := antibodySimilarity(a, b)
	enz := enzymeSimilarity(a, b)
	lip := lipidSimilarity(a, b)

	return Result{
		Overall:     (ag*agWeight + igg*antibodyWeight + enz*enzymeWeight + lip*lipidWeight) / weightSum,
		Protein:     ag,
		Antibody:    igg,
		Metabolite:  metaboliteSimilarity(a, b),
		Lipid:       lip,
		Enzyme:      enz,
		Electrolyte: electrolyteScore,
	}
}

func agSimilarity(a, b *plasma.Signature) float32 {
	av, bv := a.Proteins.AGRatio, b.Proteins.AGRatio
	return clamp01(1 - abs32(av-bv)/((av+bv)/2+0.1))
}

// IgG subclass fractions shift by single percentage points at most, so the
// term is steep: a 0.1 absolute difference already zeroes a slot.
func antibodySimilarity(a, b *plasma.Signature) float32 {
	var sum float32
	for i := range a.Antibodies.IgGSubclassRatios {
		d := abs32(a.Antibodies.IgGSubclassRatios[i] - b.Antibodies.IgGSubclassRatios[i])
		sum += clamp01(1 - 10*d)
	}
	return sum / float32(len(a.Antibodies.IgGSubclassRatios))
}

func enzymeSimilarity(a, b *plasma.Signature) float32 {
	var sum float32
	for i := 0; i < scoredEnzymeSlots; i++ {
		d := abs32(a.Enzymes.Signature[i] - b.Enzymes.Signature[i])
		sum += clamp01(1 - 8*d)
	}
	return sum / scoredEnzymeSlots
}

func lipidSimilarity(a, b *plasma.Signature) float32 {
	var sum float32
	for i := range a.Lipids.Ratios {
		av, bv := a.Lipids.Ratios[i], b.Lipids.Ratios[i]
		sum += clamp01(1 - abs32(av-bv)/((av+bv)/2+1))
	}
	return sum / float32(len(a.Lipids.Ratios))
}

func metaboliteSimilarity(a, b *plasma.Signature) float32 {
	if a.Metabolites.MetabolomeHash == b.Metabolites.MetabolomeHash {
		return 1.0
	}
	return 0.5
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
