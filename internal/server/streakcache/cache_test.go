package streakcache

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	c, err := Connect(context.Background(), "", time.Minute, nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.Set(context.Background(), &models.UserStreak{UserID: "u1", CurrentStreak: 2, LongestStreak: 2})
	_, ok := c.Get(context.Background(), "u1")
	assert.False(t, ok)
	c.Delete(context.Background(), "u1")
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCache(client, time.Minute, nil)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	assert.True(t, c.Enabled())
	assert.NotPanics(t, func() {
		c.Set(ctx, &models.UserStreak{UserID: "u1"})
		c.Delete(ctx, "u1")
	})
	_, ok := c.Get(ctx, "u1")
	assert.False(t, ok)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1", time.Minute, nil)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "daybook:streak:u1", key("u1"))
}
