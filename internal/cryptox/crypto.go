// Package cryptox wraps the fixed cryptographic primitives of the
// authentication core: random generation of salts and IVs, the password KDF,
// AES-256-GCM with a detached tag, the signature verification hash, and
// constant-time comparison. Algorithm choices and parameters are not
// negotiable at runtime.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
)

const (
	// KeySize is the AES-256 key length produced by DeriveKey.
	KeySize = 32
	// SaltSize is the per-credential KDF salt length.
	SaltSize = 16
	// IVSize is the AES-GCM nonce length, generated fresh per encryption.
	IVSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
	// HashSize is the SHA-256 digest length of the verification hash.
	HashSize = 32
	// KDFIterations is the PBKDF2-HMAC-SHA256 iteration count.
	KDFIterations = 100000
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, autherr.E(autherr.CryptoFailure, "random generation failed", err)
	}
	return b, nil
}

// DeriveKey stretches a password into a 32-byte AES key with
// PBKDF2-HMAC-SHA256 over the given salt. The caller owns the returned key
// and must wipe it after use.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, KDFIterations, KeySize, sha256.New)
}

// MakeVerifier hashes the canonical byte image of a plasma signature with
// SHA-256. The result is stored in the credential and compared in constant
// time during authentication.
func MakeVerifier(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random IV. The
// ciphertext has exactly the plaintext's length; the 16-byte authentication
// tag is returned separately so the credential layout can store the three
// parts in fixed fields.
func Encrypt(key, plaintext []byte) (iv, ciphertext, tag []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, nil, autherr.E(autherr.CryptoFailure, "invalid key size")
	}

	iv, err = RandBytes(IVSize)
	if err != nil {
		return nil, nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, autherr.E(autherr.CryptoFailure, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, nil, autherr.E(autherr.CryptoFailure, err)
	}

	sealed := aesgcm.Seal(nil, iv, plaintext, nil)
	ciphertext = sealed[:len(plaintext)]
	tag = sealed[len(plaintext):]
	return iv, ciphertext, tag, nil
}

// Decrypt opens an AES-256-GCM ciphertext with its detached tag. A failed
// tag verification (wrong key, tampered data) reports CryptoFailure; the
// caller must treat that as a failed authentication attempt.
func Decrypt(key, iv, ciphertext, tag []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, autherr.E(autherr.CryptoFailure, "invalid key size")
	}
	if len(iv) != IVSize {
		return nil, autherr.E(autherr.CryptoFailure, "invalid iv size")
	}
	if len(tag) != TagSize {
		return nil, autherr.E(autherr.CryptoFailure, "invalid tag size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, autherr.E(autherr.CryptoFailure, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, autherr.E(autherr.CryptoFailure, err)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, autherr.E(autherr.CryptoFailure, "tag verification failed", err)
	}
	return plaintext, nil
}

// Equal compares two byte slices in constant time. Used for verification
// hashes; AES-GCM performs its own constant-time tag check internally.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
