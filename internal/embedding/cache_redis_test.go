package embedding

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	c := NewRedisCache(client, time.Minute)
	keys := []string{"emb:test:a", "emb:test:b"}
	defer client.Del(ctx, keys...)

	if err := c.SetMany(ctx, keys[:1], [][]float32{{0.5, 0.25}}); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.GetMany(ctx, keys)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[1] != nil {
		t.Fatalf("expected hit then miss, got %v", got)
	}
	if got[0][0] != 0.5 || got[0][1] != 0.25 {
		t.Errorf("unexpected vector %v", got[0])
	}
}
