//go:build integration

package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedis_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(ctx, "otp:login:it@example.com", "sealed", time.Minute))

	ok, err := store.CompareAndDelete(ctx, "otp:login:it@example.com", "other")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CompareAndDelete(ctx, "otp:login:it@example.com", "sealed")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Get(ctx, "otp:login:it@example.com")
	assert.ErrorIs(t, err, ErrNil)
}
