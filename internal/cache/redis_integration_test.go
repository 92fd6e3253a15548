//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/orlangure/gnomock"
	redispreset "github.com/orlangure/gnomock/preset/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	container, err := gnomock.Start(redispreset.Preset())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gnomock.Stop(container) })

	c := NewRedisCache(config.RedisConfig{Addr: container.DefaultAddress()})
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "flights:all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "flights:all", []byte("[]"), time.Minute))
	require.NoError(t, c.Set(ctx, `flights:{"airline":"KLM"}`, []byte("[]"), time.Minute))
	require.NoError(t, c.Set(ctx, "other", []byte("1"), time.Minute))

	got, ok, err := c.Get(ctx, "flights:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(got))

	keys, err := c.Keys(ctx, "flights:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"flights:all", `flights:{"airline":"KLM"}`}, keys)

	require.NoError(t, c.Delete(ctx, keys...))
	require.NoError(t, c.Delete(ctx))

	keys, err = c.Keys(ctx, "flights:*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
