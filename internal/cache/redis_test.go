package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorEncoding(t *testing.T) {
	v := []float32{0.1, -2.5, 3e-7, 0}

	got, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestDecodeVector_BadLength(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	k := cacheKey("text-embedding-004", "What is Section 302 IPC?")

	assert.True(t, strings.HasPrefix(k, keyPrefix))
	assert.Equal(t, k, cacheKey("text-embedding-004", "What is Section 302 IPC?"))
	assert.NotEqual(t, k, cacheKey("text-embedding-005", "What is Section 302 IPC?"))
	assert.NotEqual(t, k, cacheKey("text-embedding-004", "What is Section 304 IPC?"))
}

// Runs against a real server when TEST_REDIS_URL is set.
func TestRedisEmbeddingCache_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisEmbeddingCache(client, "test-model-"+time.Now().Format(time.RFC3339Nano), time.Minute)

	_, ok, err := c.Get(ctx, "q")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "q", []float32{1, 2, 3}))

	got, ok, err := c.Get(ctx, "q")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, got)
}
