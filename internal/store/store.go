// Package store persists enrolled credentials. Implementations keep the
// exported credential image as an opaque blob and mirror the mutable
// bookkeeping fields into columns so lockout state survives restarts.
package store

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/lifeauth/internal/credential"
)

var (
	// ErrNotFound is returned when no credential exists for the user id.
	ErrNotFound = errors.New("credential not found")
	// ErrDuplicate is returned by Save when the user id is already enrolled.
	ErrDuplicate = errors.New("credential already exists")
)

// Store is the persistence surface used by the engine and the CLI. Save
// inserts a new credential, Update rewrites an existing one; both operate on
// the full record.
type Store interface {
	Save(ctx context.Context, cred *credential.Credential) error
	Update(ctx context.Context, cred *credential.Credential) error
	Get(ctx context.Context, userID string) (*credential.Credential, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, userID string) error
	Close() error
}
