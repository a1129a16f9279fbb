package plasma

import (
	"crypto/sha256"
	"encoding/binary"
)

// numericRegionSize is the length of the packed numeric prefix of a
// fingerprint; the remaining bytes are a hash tail.
const numericRegionSize = 34

// ComputeFingerprint fills the 64-byte fingerprint from the derived
// features. Layout, little-endian:
//
//	bytes 0..2    u16(A/G ratio * 1000)
//	bytes 2..10   four u16(IgG subclass fraction * 10000)
//	bytes 10..14  u32 metabolome hash
//	bytes 14..26  six u16(enzyme signature slot * 10000)
//	bytes 26..34  four u16(lipid ratio * 100)
//	bytes 34..64  leading 30 bytes of SHA-256 over the canonical encoding
//
// The hash is taken with the fingerprint and entropy fields zeroed, so the
// fingerprint is a pure function of the signature contents regardless of
// call order. Fingerprints are for display and diagnostics; matching always
// uses the full signature.
func (s *Signature) ComputeFingerprint() {
	var fp [FingerprintSize]byte
	off := 0
	put16 := func(v uint16) {
		binary.LittleEndian.PutUint16(fp[off:], v)
		off += 2
	}

	put16(uint16(s.Proteins.AGRatio * 1000))
	for i := 0; i < 4; i++ {
		put16(uint16(s.Antibodies.IgGSubclassRatios[i] * 10000))
	}
	binary.LittleEndian.PutUint32(fp[off:], s.Metabolites.MetabolomeHash)
	off += 4
	for i := 0; i < 6; i++ {
		put16(uint16(s.Enzymes.Signature[i] * 10000))
	}
	for i := 0; i < 4; i++ {
		put16(uint16(s.Lipids.Ratios[i] * 100))
	}

	digest := sha256.Sum256(s.hashImage())
	copy(fp[off:], digest[:FingerprintSize-off])

	s.Fingerprint = fp
}

// hashImage returns the canonical encoding with the fingerprint and entropy
// fields zeroed. All Signature fields are value types, so the shallow copy
// is a full copy.
func (s *Signature) hashImage() []byte {
	c := *s
	c.Fingerprint = [FingerprintSize]byte{}
	c.EntropyBits = 0
	return c.Encode()
}

// CalculateEntropy estimates the biometric entropy of the signature in bits.
// The estimate is structural, not empirical: two bits per protein marker,
// eight for the IgG subclass vector, sixteen for the metabolome hash, six
// for the enzyme signature, four for the lipid ratios, and half a bit for
// each marker in the full vector.
func (s *Signature) CalculateEntropy() uint32 {
	return 2*ProteinMarkers + 8 + 16 + 6 + 4 + TotalMarkers/2
}
