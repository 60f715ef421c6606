package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/storage"
)

func backends(t *testing.T) map[string]storage.Storage {
	t.Helper()

	file, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]storage.Storage{
		"memory": storage.NewMemory(),
		"file":   file,
		"redis":  storage.NewRedis(client, "storefront:"),
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, "cart")
			require.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, s.Save(ctx, "cart", []byte(`{"v":1}`)))
			require.NoError(t, s.Save(ctx, "cart", []byte(`{"v":2}`)))

			got, err := s.Load(ctx, "cart")
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":2}`, string(got))

			require.NoError(t, s.Delete(ctx, "cart"))
			require.NoError(t, s.Delete(ctx, "cart"))

			_, err = s.Load(ctx, "cart")
			require.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, s.Ping(ctx))
		})
	}
}

func TestRedis_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := storage.NewRedis(client, "storefront:")
	require.NoError(t, s.Save(context.Background(), "favorites", []byte(`[]`)))

	v, err := mr.Get("storefront:favorites")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestFile_RejectsPathKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewFile(dir)
	require.NoError(t, err)

	require.Error(t, s.Save(context.Background(), "../escape", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.Save(context.Background(), "cart", []byte("x")))
	_, err = os.Stat(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
}

func TestMemory_FailSaves(t *testing.T) {
	s := storage.NewMemory()
	boom := errors.New("quota exceeded")

	s.FailSaves(boom)
	require.ErrorIs(t, s.Save(context.Background(), "cart", []byte("x")), boom)

	s.FailSaves(nil)
	require.NoError(t, s.Save(context.Background(), "cart", []byte("x")))
}
