package cache

import (
    "context"
    "errors"
    "testing"
    "time"

    miniredis "github.com/alicebob/miniredis/v2"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type payload struct {
    Name  string  `json:"name"`
    Total float64 `json:"total"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
    t.Helper()
    mr := miniredis.RunT(t)
    client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = client.Close() })
    return NewWithClient(client, ttl), mr
}

func TestFetchJSON_LoadsOnceThenHits(t *testing.T) {
    c, _ := newTestCache(t, time.Minute)
    ctx := context.Background()
    key, err := c.BuildKey(ctx, "dashboard", "a@example.com")
    require.NoError(t, err)
    assert.Equal(t, "escrow:dashboard:a@example.com:1", key)

    calls := 0
    loader := func(context.Context) (any, error) {
        calls++
        return payload{Name: "acme", Total: 6000}, nil
    }
    var first, second payload
    require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
    require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
    assert.Equal(t, 1, calls)
    assert.Equal(t, first, second)
    assert.Equal(t, "acme", second.Name)
}

func TestFetchJSON_TTLExpiry(t *testing.T) {
    c, mr := newTestCache(t, time.Minute)
    ctx := context.Background()
    calls := 0
    loader := func(context.Context) (any, error) { calls++; return payload{Name: "x"}, nil }
    var out payload
    require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
    mr.FastForward(2 * time.Minute)
    require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
    assert.Equal(t, 2, calls)
}

func TestFetchJSON_LoaderErrorNotCached(t *testing.T) {
    c, mr := newTestCache(t, time.Minute)
    ctx := context.Background()
    boom := errors.New("boom")
    var out payload
    err := c.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) { return nil, boom })
    assert.ErrorIs(t, err, boom)
    assert.False(t, mr.Exists("k"))
}

func TestBump_ChangesKeys(t *testing.T) {
    c, _ := newTestCache(t, time.Minute)
    ctx := context.Background()
    before, err := c.BuildKey(ctx, "dashboard", "a")
    require.NoError(t, err)
    ver, err := c.Bump(ctx)
    require.NoError(t, err)
    assert.Equal(t, int64(2), ver)
    after, err := c.BuildKey(ctx, "dashboard", "a")
    require.NoError(t, err)
    assert.NotEqual(t, before, after)
}

func TestNilCache_PassesThrough(t *testing.T) {
    var c *Cache
    ctx := context.Background()
    key, err := c.BuildKey(ctx, "dashboard", "a")
    require.NoError(t, err)
    assert.Equal(t, "escrow:dashboard:a", key)
    var out payload
    require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
        return payload{Name: "direct"}, nil
    }))
    assert.Equal(t, "direct", out.Name)
    _, err = c.Bump(ctx)
    assert.NoError(t, err)
    assert.NoError(t, c.Ready(ctx))
    assert.Error(t, c.FetchJSON(ctx, key, &out, nil))
}
