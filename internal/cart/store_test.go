package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// setupTestRedis creates a miniredis instance and a client pointed at it
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cart.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, []byte(`{"version":1,"items":[]}`)))
	require.NoError(t, store.Save(ctx, []byte(`{"version":1,"items":[{"id":1}]}`)))

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"items":[{"id":1}]}`, string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".cart-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCartPersistsAcrossSessionsInFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.json")

	first := Open(ctx, NewFileStore(path), zap.NewNop())
	require.NoError(t, first.Add(ctx, product(7, 250)))
	require.NoError(t, first.Add(ctx, product(7, 250)))
	require.NoError(t, first.Add(ctx, product(8, 100)))

	second := Open(ctx, NewFileStore(path), zap.NewNop())
	entries := second.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(7), entries[0].ID)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.Equal(t, 3, second.Count())
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	c := Open(context.Background(), NewFileStore(path), zap.NewNop())
	assert.Equal(t, 0, c.Len())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "storefront:cart", time.Hour)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	c := Open(ctx, store, zap.NewNop())
	require.NoError(t, c.Add(ctx, product(1, 10)))
	require.NoError(t, c.UpdateQuantity(ctx, 1, 3))

	raw, err := mr.Get("storefront:cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"items":[{"id":1,"name":"Product","brand":"","category":"Shoes","subcategory":"","description":"","price":10,"image":"","stock":10,"features":null,"specifications":null,"quantity":3}]}`, raw)
	assert.Equal(t, time.Hour, mr.TTL("storefront:cart"))

	restored := Open(ctx, store, zap.NewNop())
	assert.Equal(t, 3, restored.Count())
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "storefront:cart", 0)
	mr.Close()

	c := Open(context.Background(), store, zap.NewNop())
	assert.Equal(t, 0, c.Len())
	assert.Error(t, c.Add(context.Background(), models.Product{ID: 1}))
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := NewRedisClient("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, NewRedisStore(client, "storefront:cart", 0).Ping(context.Background()))

	_, err = NewRedisClient("not a url")
	assert.Error(t, err)
}

func TestRedisStorePingUnreachable(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	err := NewRedisStore(client, "storefront:cart", 0).Ping(context.Background())
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
