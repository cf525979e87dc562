package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCache_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewSessionCache(client, time.Hour)
	ctx := context.Background()

	_, ok, err := c.GetToken(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetToken(ctx, 1, "first", 0))
	assert.Equal(t, time.Hour, mr.TTL("auth:session:1"))

	require.NoError(t, c.SetToken(ctx, 1, "second", 10*time.Minute))
	token, ok, err := c.GetToken(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", token)

	require.NoError(t, c.DeleteToken(ctx, 1))
	_, ok, err = c.GetToken(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionCache_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewSessionCache(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.SetToken(ctx, 2, "tok", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.GetToken(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
