package plasma

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
)

// EncodedSize is the length of the canonical byte encoding of a Signature:
// six packed profiles (1975 bytes) plus the trailer (fingerprint, entropy,
// timestamp, confidence, stability, fasting flag; 85 bytes).
const EncodedSize = 2060

// Encode produces the canonical little-endian byte image of the signature.
// The layout is the packed struct field order with no padding; markers
// occupy 11 bytes each. This image is what gets hashed into the verification
// hash and encrypted into a credential.
func (s *Signature) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, EncodedSize))
	if err := binary.Write(buf, binary.LittleEndian, s); err != nil {
		// every field is fixed-size and the writer is a bytes.Buffer
		panic(fmt.Sprintf("plasma: encode: %v", err))
	}
	return buf.Bytes()
}

// Decode parses a canonical encoding back into a Signature. The input must
// be exactly EncodedSize bytes.
func Decode(b []byte) (*Signature, error) {
	if len(b) != EncodedSize {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("encoded signature must be %d bytes, got %d", EncodedSize, len(b)))
	}
	s := &Signature{}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, s); err != nil {
		return nil, autherr.E(autherr.InitFailed, err)
	}
	return s, nil
}
