// Package credential defines the two-factor credential record produced by
// enrollment: the AES-256-GCM encrypted plasma signature, the KDF salt, the
// verification hash and the lockout bookkeeping. The record is inert data;
// only the auth engine mutates counters, timestamps and the lock flag.
package credential

import (
	"github.com/dmitrijs2005/lifeauth/internal/cryptox"
	"github.com/dmitrijs2005/lifeauth/internal/plasma"
)

// Version is the only credential format version importers accept.
const Version = 1

// UserIDSize is the on-wire user id field width. The last byte is always
// NUL, so ids are limited to UserIDSize-1 bytes.
const UserIDSize = 64

// EncryptedBufSize is the fixed on-wire width of the encrypted-signature
// region. GCM keeps the ciphertext as long as the plaintext; the slack
// beyond the encoded signature stays zero.
const EncryptedBufSize = plasma.EncodedSize + 64

// ExportedSize is the exact byte length of an exported credential.
const ExportedSize = 4 + // version
	UserIDSize +
	EncryptedBufSize +
	4 + // encrypted size
	cryptox.SaltSize +
	cryptox.IVSize +
	cryptox.TagSize +
	cryptox.HashSize +
	4 + // baseline A/G ratio
	16 + // baseline IgG ratios
	8 + // enrolled timestamp
	8 + // last auth timestamp
	4 + // auth count
	4 + // failed count
	1 + // locked flag
	4 // enrollment liveness

// Credential binds a user to their encrypted plasma signature. IsLocked is
// sticky: once set, authentication fails until an explicit lockout reset.
type Credential struct {
	Version            uint32
	UserID             string
	EncryptedSignature []byte
	Salt               [cryptox.SaltSize]byte
	IV                 [cryptox.IVSize]byte
	AuthTag            [cryptox.TagSize]byte
	VerificationHash   [cryptox.HashSize]byte
	BaselineAGRatio    float32
	BaselineIgGRatios  [4]float32
	EnrolledTimestamp  uint64 // milliseconds since epoch
	LastAuthTimestamp  uint64
	AuthCount          uint32
	FailedCount        uint32
	IsLocked           bool
	EnrollmentLiveness float32
}
