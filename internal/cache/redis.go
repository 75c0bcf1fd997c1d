// Package cache keeps question embeddings in Redis so repeated questions
// skip the embedding call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "legalchat:emb:"

type RedisEmbeddingCache struct {
	client *redis.Client
	model  string
	ttl    time.Duration
}

// NewRedisClient parses redisURL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// NewRedisEmbeddingCache namespaces keys by embedding model, so switching
// models never serves stale vectors.
func NewRedisEmbeddingCache(client *redis.Client, model string, ttl time.Duration) *RedisEmbeddingCache {
	return &RedisEmbeddingCache{client: client, model: model, ttl: ttl}
}

func (c *RedisEmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	b, err := c.client.Get(ctx, cacheKey(c.model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	vec, err := decodeVector(b)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func (c *RedisEmbeddingCache) Set(ctx context.Context, text string, embedding []float32) error {
	return c.client.Set(ctx, cacheKey(c.model, text), encodeVector(embedding), c.ttl).Err()
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
