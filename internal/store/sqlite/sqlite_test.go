package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/lifeauth/internal/credential"
	"github.com/dmitrijs2005/lifeauth/internal/plasma"
	"github.com/dmitrijs2005/lifeauth/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCredential(userID string) *credential.Credential {
	c := &credential.Credential{
		Version:            credential.Version,
		UserID:             userID,
		EncryptedSignature: make([]byte, plasma.EncodedSize),
		BaselineAGRatio:    1.6,
		BaselineIgGRatios:  [4]float32{0.6, 0.25, 0.08, 0.07},
		EnrolledTimestamp:  1700000000000,
		EnrollmentLiveness: 0.95,
	}
	for i := range c.EncryptedSignature {
		c.EncryptedSignature[i] = byte(i * 7)
	}
	for i := range c.Salt {
		c.Salt[i] = byte(i + 1)
	}
	for i := range c.IV {
		c.IV[i] = byte(i + 17)
	}
	for i := range c.AuthTag {
		c.AuthTag[i] = byte(i + 33)
	}
	for i := range c.VerificationHash {
		c.VerificationHash[i] = byte(i + 65)
	}
	return c
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestOpen_RunsMigrations(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"credentials", "credential_events", "goose_db_version"} {
		if !tableExists(t, s.db, name) {
			t.Fatalf("expected table %q to exist after migrations", name)
		}
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "credentials.db")

	s1, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("first Open error: %v", err)
	}
	s1.Close()

	s2, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("second Open error: %v", err)
	}
	s2.Close()
}

func TestOpen_MigrationFailure(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "credentials.db"))
	if err == nil {
		t.Fatal("expected migration error")
	}
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	want := testCredential("quinn")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := s.Get(ctx, "quinn")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSave_Duplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCredential("quinn")); err != nil {
		t.Fatalf("first Save error: %v", err)
	}

	err := s.Save(ctx, testCredential("quinn"))
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("want store.ErrDuplicate, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Get(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want store.ErrNotFound, got %v", err)
	}
}

func TestUpdate_PersistsCounters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	cred := testCredential("quinn")
	if err := s.Save(ctx, cred); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	cred.AuthCount = 5
	cred.FailedCount = 2
	cred.IsLocked = true
	cred.LastAuthTimestamp = 1700000999000
	if err := s.Update(ctx, cred); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	got, err := s.Get(ctx, "quinn")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.AuthCount != 5 || got.FailedCount != 2 || !got.IsLocked || got.LastAuthTimestamp != 1700000999000 {
		t.Fatalf("unexpected credential after update: %+v", got)
	}

	// Mirror columns track the blob.
	var authCount, failedCount, locked int64
	err = s.db.QueryRow(`SELECT auth_count, failed_count, is_locked FROM credentials WHERE user_id = ?`, "quinn").
		Scan(&authCount, &failedCount, &locked)
	if err != nil {
		t.Fatalf("column query failed: %v", err)
	}
	if authCount != 5 || failedCount != 2 || locked != 1 {
		t.Fatalf("unexpected mirror columns: auth=%d failed=%d locked=%d", authCount, failedCount, locked)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := newStore(t)

	err := s.Update(context.Background(), testCredential("ghost"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want store.ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCredential("quinn")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := s.Delete(ctx, "quinn"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, err := s.Get(ctx, "quinn"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want store.ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "quinn"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want store.ErrNotFound on second delete, got %v", err)
	}
}

func TestList_SortedByUserID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty list, got %v", ids)
	}

	for _, id := range []string{"carol", "alice", "bob"} {
		if err := s.Save(ctx, testCredential(id)); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}

	ids, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("want %v, got %v", want, ids)
	}
}

func TestEventTrail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	cred := testCredential("quinn")
	if err := s.Save(ctx, cred); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cred.AuthCount = 1
	if err := s.Update(ctx, cred); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := s.Delete(ctx, "quinn"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	rows, err := s.db.Query(`SELECT event FROM credential_events WHERE user_id = ? ORDER BY id`, "quinn")
	if err != nil {
		t.Fatalf("event query failed: %v", err)
	}
	defer rows.Close()

	var events []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}

	want := []string{"enrolled", "updated", "deleted"}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("want events %v, got %v", want, events)
	}
}

func TestSave_DuplicateLeavesNoEvent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCredential("quinn")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := s.Save(ctx, testCredential("quinn")); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("want store.ErrDuplicate, got %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM credential_events WHERE user_id = ?`, "quinn").Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single enrolled event, got %d", n)
	}
}
