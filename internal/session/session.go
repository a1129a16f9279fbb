// Package session issues short-lived HS256 session tokens after a
// successful authentication.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
)

// DefaultValidity bounds a session when no explicit duration is configured.
const DefaultValidity = 15 * time.Minute

// Claims carries the registered claims plus the authenticated user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// Issuer signs and verifies session tokens with a shared secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

// NewIssuer creates an issuer. A non-positive validity falls back to
// DefaultValidity.
func NewIssuer(secret []byte, validity time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, autherr.E(autherr.InitFailed, "empty session secret")
	}
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Issuer{secret: secret, validity: validity}, nil
}

// Issue signs a token for the given user id.
func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lifeauth",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", autherr.E(autherr.CryptoFailure, "signing session token", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user id it was issued for.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return "", autherr.E(autherr.Permission, "invalid session token", err)
	}
	if !token.Valid {
		return "", autherr.E(autherr.Permission, "invalid session token")
	}

	return claims.UserID, nil
}
