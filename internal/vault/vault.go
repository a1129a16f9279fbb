// Package vault stores credential backups as opaque blobs. A backup is the
// exported credential byte image; the vault never sees plaintext signatures.
// Backends: in-memory (tests), local filesystem, and S3-compatible object
// storage.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("backup not found")

// Vault is a flat key/blob namespace. Keys use forward slashes regardless
// of backend. Delete is idempotent: removing a missing key is not an error.
type Vault interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// BackupKey returns the object key for a new credential backup. The
// millisecond prefix keeps keys for one user lexically ordered by creation
// time, so the newest backup is the last key in a sorted listing.
func BackupKey(userID string) string {
	return fmt.Sprintf("credentials/%s/%d-%s.cred", userID, time.Now().UnixMilli(), uuid.New())
}

// UserPrefix returns the listing prefix covering every backup of one user.
func UserPrefix(userID string) string {
	return fmt.Sprintf("credentials/%s/", userID)
}
