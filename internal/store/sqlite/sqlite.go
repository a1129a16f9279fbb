// Package sqlite implements the credential store on an embedded SQLite
// database, the default for single-node and CLI deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dmitrijs2005/lifeauth/internal/credential"
	"github.com/dmitrijs2005/lifeauth/internal/dbx"
	"github.com/dmitrijs2005/lifeauth/internal/store"
	"github.com/dmitrijs2005/lifeauth/internal/store/sqlite/migrations"
)

// Store persists credentials in a SQLite database. The exported credential
// blob is the source of truth; the counter columns mirror it so lockout
// state can be inspected with plain SQL. Every write also appends to the
// credential_events audit table inside the same transaction.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New wraps an already-open database. The caller is responsible for having
// run migrations.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the SQLite database at dsn, creating it if needed, and applies
// any pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Save inserts a new credential. store.ErrDuplicate is returned when the
// user is already enrolled.
func (s *Store) Save(ctx context.Context, cred *credential.Credential) error {
	blob, err := cred.MarshalBinary()
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (user_id, blob, auth_count, failed_count, is_locked, enrolled_at, last_auth_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO NOTHING`,
			cred.UserID, blob, cred.AuthCount, cred.FailedCount, cred.IsLocked,
			cred.EnrolledTimestamp, cred.LastAuthTimestamp, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert credential: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrDuplicate
		}
		return recordEvent(ctx, tx, cred.UserID, "enrolled")
	})
}

// Update rewrites the stored credential after counter, lockout or baseline
// changes.
func (s *Store) Update(ctx context.Context, cred *credential.Credential) error {
	blob, err := cred.MarshalBinary()
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE credentials
			SET blob = ?, auth_count = ?, failed_count = ?, is_locked = ?, last_auth_at = ?, updated_at = ?
			WHERE user_id = ?`,
			blob, cred.AuthCount, cred.FailedCount, cred.IsLocked,
			cred.LastAuthTimestamp, time.Now().UnixMilli(), cred.UserID)
		if err != nil {
			return fmt.Errorf("failed to update credential: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return recordEvent(ctx, tx, cred.UserID, "updated")
	})
}

// Get loads the credential for userID.
func (s *Store) Get(ctx context.Context, userID string) (*credential.Credential, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM credentials WHERE user_id = ?`, userID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select credential: %w", err)
	}
	return credential.Import(blob)
}

// List returns the ids of all enrolled users in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM credentials ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user ids: %w", err)
	}
	return ids, nil
}

// Delete removes the credential for userID.
func (s *Store) Delete(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return recordEvent(ctx, tx, userID, "deleted")
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordEvent(ctx context.Context, q dbx.DBTX, userID, event string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO credential_events (user_id, event, at) VALUES (?, ?, ?)`,
		userID, event, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", event, err)
	}
	return nil
}
