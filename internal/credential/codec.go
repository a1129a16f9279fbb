package credential

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
	"github.com/dmitrijs2005/lifeauth/internal/cryptox"
)

// wireCredential is the packed on-wire form. Field order is binding and
// every field is fixed-size; EncryptedSize records the used prefix of the
// zero-padded signature region.
type wireCredential struct {
	Version            uint32
	UserID             [UserIDSize]byte
	EncryptedSignature [EncryptedBufSize]byte
	EncryptedSize      uint32
	Salt               [cryptox.SaltSize]byte
	IV                 [cryptox.IVSize]byte
	AuthTag            [cryptox.TagSize]byte
	VerificationHash   [cryptox.HashSize]byte
	BaselineAGRatio    float32
	BaselineIgGRatios  [4]float32
	EnrolledTimestamp  uint64
	LastAuthTimestamp  uint64
	AuthCount          uint32
	FailedCount        uint32
	IsLocked           bool
	EnrollmentLiveness float32
}

// Export writes the credential in its little-endian wire form. A nil buf
// reports the required length without writing. A short buf reports the
// required length and fails with a memory error. On success the full record
// is written and its length returned.
func (c *Credential) Export(buf []byte) (int, error) {
	if buf == nil {
		return ExportedSize, nil
	}
	if len(buf) < ExportedSize {
		return ExportedSize, autherr.E(autherr.Memory,
			fmt.Sprintf("credential export needs %d bytes, got %d", ExportedSize, len(buf)))
	}

	w, err := c.wire()
	if err != nil {
		return ExportedSize, err
	}

	var out bytes.Buffer
	out.Grow(ExportedSize)
	if err := binary.Write(&out, binary.LittleEndian, w); err != nil {
		// every field is fixed-size and the writer is a bytes.Buffer
		panic("credential: export: " + err.Error())
	}
	copy(buf, out.Bytes())
	return ExportedSize, nil
}

// Import parses an exported credential. Blobs that are short, carry an
// unknown version or an impossible encrypted size are rejected.
func Import(buf []byte) (*Credential, error) {
	if len(buf) < ExportedSize {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("credential blob must be %d bytes, got %d", ExportedSize, len(buf)))
	}

	var w wireCredential
	if err := binary.Read(bytes.NewReader(buf[:ExportedSize]), binary.LittleEndian, &w); err != nil {
		return nil, autherr.E(autherr.InitFailed, "decoding credential", err)
	}

	if w.Version != Version {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("unsupported credential version %d", w.Version))
	}
	if w.EncryptedSize > EncryptedBufSize {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("encrypted size %d exceeds buffer", w.EncryptedSize))
	}

	c := &Credential{
		Version:            w.Version,
		UserID:             stringFromPadded(w.UserID[:]),
		EncryptedSignature: append([]byte(nil), w.EncryptedSignature[:w.EncryptedSize]...),
		Salt:               w.Salt,
		IV:                 w.IV,
		AuthTag:            w.AuthTag,
		VerificationHash:   w.VerificationHash,
		BaselineAGRatio:    w.BaselineAGRatio,
		BaselineIgGRatios:  w.BaselineIgGRatios,
		EnrolledTimestamp:  w.EnrolledTimestamp,
		LastAuthTimestamp:  w.LastAuthTimestamp,
		AuthCount:          w.AuthCount,
		FailedCount:        w.FailedCount,
		IsLocked:           w.IsLocked,
		EnrollmentLiveness: w.EnrollmentLiveness,
	}
	return c, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Credential) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ExportedSize)
	if _, err := c.Export(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Credential) UnmarshalBinary(data []byte) error {
	imported, err := Import(data)
	if err != nil {
		return err
	}
	*c = *imported
	return nil
}

func (c *Credential) wire() (*wireCredential, error) {
	if len(c.UserID) >= UserIDSize {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("user id exceeds %d bytes", UserIDSize-1))
	}
	if len(c.EncryptedSignature) > EncryptedBufSize {
		return nil, autherr.E(autherr.InitFailed,
			fmt.Sprintf("encrypted signature exceeds %d bytes", EncryptedBufSize))
	}

	w := &wireCredential{
		Version:            c.Version,
		EncryptedSize:      uint32(len(c.EncryptedSignature)),
		Salt:               c.Salt,
		IV:                 c.IV,
		AuthTag:            c.AuthTag,
		VerificationHash:   c.VerificationHash,
		BaselineAGRatio:    c.BaselineAGRatio,
		BaselineIgGRatios:  c.BaselineIgGRatios,
		EnrolledTimestamp:  c.EnrolledTimestamp,
		LastAuthTimestamp:  c.LastAuthTimestamp,
		AuthCount:          c.AuthCount,
		FailedCount:        c.FailedCount,
		IsLocked:           c.IsLocked,
		EnrollmentLiveness: c.EnrollmentLiveness,
	}
	copy(w.UserID[:], c.UserID)
	copy(w.EncryptedSignature[:], c.EncryptedSignature)
	return w, nil
}

func stringFromPadded(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
