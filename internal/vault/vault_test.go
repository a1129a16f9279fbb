package vault

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupKey_Format(t *testing.T) {
	k1 := BackupKey("quinn")
	assert.True(t, strings.HasPrefix(k1, "credentials/quinn/"))
	assert.True(t, strings.HasSuffix(k1, ".cred"))

	time.Sleep(2 * time.Millisecond)
	k2 := BackupKey("quinn")
	assert.NotEqual(t, k1, k2)
	// Millisecond prefix keeps later backups lexically after earlier ones.
	assert.Less(t, k1, k2)

	assert.Equal(t, "credentials/quinn/", UserPrefix("quinn"))
}

func TestMemory_RoundTrip(t *testing.T) {
	v := NewMemory()
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "credentials/quinn/1.cred", []byte("blob-1")))

	got, err := v.Get(ctx, "credentials/quinn/1.cred")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-1"), got)

	// The vault hands out copies, not its internal buffer.
	got[0] = 'X'
	again, err := v.Get(ctx, "credentials/quinn/1.cred")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-1"), again)
}

func TestMemory_GetMissing(t *testing.T) {
	v := NewMemory()
	_, err := v.Get(context.Background(), "credentials/ghost/1.cred")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	v := NewMemory()
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "k", []byte("b")))
	require.NoError(t, v.Delete(ctx, "k"))
	require.NoError(t, v.Delete(ctx, "k"))

	_, err := v.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ListByPrefix(t *testing.T) {
	v := NewMemory()
	ctx := context.Background()

	for _, k := range []string{
		"credentials/quinn/2.cred",
		"credentials/quinn/1.cred",
		"credentials/alex/1.cred",
	} {
		require.NoError(t, v.Put(ctx, k, []byte("b")))
	}

	keys, err := v.List(ctx, UserPrefix("quinn"))
	require.NoError(t, err)
	assert.Equal(t, []string{"credentials/quinn/1.cred", "credentials/quinn/2.cred"}, keys)

	all, err := v.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFS_RoundTrip(t *testing.T) {
	v, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "credentials/quinn/1.cred"
	require.NoError(t, v.Put(ctx, key, []byte("blob-1")))

	got, err := v.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-1"), got)

	// Overwrite replaces the previous blob.
	require.NoError(t, v.Put(ctx, key, []byte("blob-2")))
	got, err = v.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-2"), got)
}

func TestFS_GetMissing(t *testing.T) {
	v, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = v.Get(context.Background(), "credentials/ghost/1.cred")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFS_DeleteIsIdempotent(t *testing.T) {
	v, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "credentials/quinn/1.cred", []byte("b")))
	require.NoError(t, v.Delete(ctx, "credentials/quinn/1.cred"))
	require.NoError(t, v.Delete(ctx, "credentials/quinn/1.cred"))
}

func TestFS_ListByPrefix(t *testing.T) {
	v, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, k := range []string{
		"credentials/quinn/2.cred",
		"credentials/quinn/1.cred",
		"credentials/alex/1.cred",
	} {
		require.NoError(t, v.Put(ctx, k, []byte("b")))
	}

	keys, err := v.List(ctx, UserPrefix("quinn"))
	require.NoError(t, err)
	assert.Equal(t, []string{"credentials/quinn/1.cred", "credentials/quinn/2.cred"}, keys)
}

func TestFS_RejectsBadKeys(t *testing.T) {
	v, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{
		"",
		"/etc/passwd",
		"../outside",
		"credentials/../../outside",
		"credentials//double",
	} {
		assert.Error(t, v.Put(ctx, key, []byte("b")), "key %q", key)
		_, err := v.Get(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}
