package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage := NewFileStorage(path)

	cred, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cred)

	require.NoError(t, storage.Save(ctx, "tok1"))

	cred, err = NewFileStorage(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok1", cred)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, storage.Save(ctx, "tok2"))
	cred, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok2", cred)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStorage_Clear(t *testing.T) {
	ctx := context.Background()
	storage := NewFileStorage(filepath.Join(t.TempDir(), "session.json"))

	// Clearing a missing file is not an error.
	require.NoError(t, storage.Clear(ctx))

	require.NoError(t, storage.Save(ctx, "tok"))
	require.NoError(t, storage.Clear(ctx))

	cred, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cred)
}

func TestFileStorage_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse session file")
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	require.NoError(t, storage.Save(ctx, "tok"))
	cred, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", cred)

	require.NoError(t, storage.Clear(ctx))
	cred, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cred)
}

func TestNewRedisStorage_InvalidURL(t *testing.T) {
	_, err := NewRedisStorage("redis://localhost:6379/notanumber")
	assert.Error(t, err)
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		t.Skip("REDIS_URL not set, skipping redis session storage test")
	}

	ctx := context.Background()
	storage, err := NewRedisStorage(addr)
	require.NoError(t, err)
	defer func() { _ = storage.Close() }()
	require.NoError(t, storage.Ping(ctx))

	require.NoError(t, storage.Save(ctx, "tok-redis"))
	cred, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-redis", cred)

	require.NoError(t, storage.Clear(ctx))
	cred, err = storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cred)
}
