package plasma

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestComputeFingerprint_Deterministic(t *testing.T) {
	a := testSignature()
	b := testSignature()

	if !bytes.Equal(a.Fingerprint[:], b.Fingerprint[:]) {
		t.Fatalf("identical signatures produced different fingerprints")
	}
}

func TestComputeFingerprint_IndependentOfPriorState(t *testing.T) {
	s := testSignature()
	want := s.Fingerprint

	// garbage in the derived fields must not leak into a recomputation
	s.Fingerprint = [FingerprintSize]byte{0xff, 0xee, 0xdd}
	s.EntropyBits = 999999
	s.ComputeFingerprint()

	if !bytes.Equal(want[:], s.Fingerprint[:]) {
		t.Fatalf("fingerprint depends on prior fingerprint/entropy state")
	}
}

func TestComputeFingerprint_NumericRegionLayout(t *testing.T) {
	s := testSignature()
	fp := s.Fingerprint

	wantAG := uint16(s.Proteins.AGRatio * 1000)
	if got := binary.LittleEndian.Uint16(fp[0:2]); got != wantAG {
		t.Errorf("bytes 0..2: got %d, want A/G quantized %d", got, wantAG)
	}

	for i := 0; i < 4; i++ {
		want := uint16(s.Antibodies.IgGSubclassRatios[i] * 10000)
		if got := binary.LittleEndian.Uint16(fp[2+2*i:]); got != want {
			t.Errorf("IgG slot %d: got %d, want %d", i, got, want)
		}
	}

	if got := binary.LittleEndian.Uint32(fp[10:14]); got != s.Metabolites.MetabolomeHash {
		t.Errorf("bytes 10..14: got %#x, want metabolome hash %#x", got, s.Metabolites.MetabolomeHash)
	}

	for i := 0; i < 6; i++ {
		want := uint16(s.Enzymes.Signature[i] * 10000)
		if got := binary.LittleEndian.Uint16(fp[14+2*i:]); got != want {
			t.Errorf("enzyme slot %d: got %d, want %d", i, got, want)
		}
	}

	for i := 0; i < 4; i++ {
		want := uint16(s.Lipids.Ratios[i] * 100)
		if got := binary.LittleEndian.Uint16(fp[26+2*i:]); got != want {
			t.Errorf("lipid ratio %d: got %d, want %d", i, got, want)
		}
	}
}

func TestComputeFingerprint_TimestampOnlyMovesHashTail(t *testing.T) {
	a := testSignature()

	b := testSignature()
	b.SampleTimestamp += 60000
	b.ComputeFingerprint()

	if !bytes.Equal(a.Fingerprint[:numericRegionSize], b.Fingerprint[:numericRegionSize]) {
		t.Errorf("numeric region changed with timestamp")
	}
	if bytes.Equal(a.Fingerprint[numericRegionSize:], b.Fingerprint[numericRegionSize:]) {
		t.Errorf("hash tail did not change with timestamp")
	}
}

func TestComputeFingerprint_HashTailNotZero(t *testing.T) {
	s := testSignature()
	tail := s.Fingerprint[numericRegionSize:]
	if bytes.Equal(tail, make([]byte, len(tail))) {
		t.Fatalf("hash tail is all zeros")
	}
}

func TestComputeFingerprint_SensitiveToContents(t *testing.T) {
	a := testSignature()

	b := testSignature()
	b.Proteins.Albumin.Value = 5.0
	b.DeriveFeatures()
	b.ComputeFingerprint()

	if bytes.Equal(a.Fingerprint[:], b.Fingerprint[:]) {
		t.Fatalf("different signatures produced equal fingerprints")
	}
}

func TestCalculateEntropy(t *testing.T) {
	s := testSignature()
	bits := s.CalculateEntropy()

	if bits != 168 {
		t.Errorf("entropy estimate %d, want 168", bits)
	}
	if bits < 80 || bits > 200 {
		t.Errorf("entropy estimate %d outside [80, 200]", bits)
	}
}
