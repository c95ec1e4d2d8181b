package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 按 JSON 缓存任意值；缓存内容解不开时当作未命中，回源后覆盖
func GetOrLoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	fetch := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, fetch)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err == nil {
		return out, nil
	}

	_ = c.Invalidate(ctx, key)
	if b, err = c.GetOrLoad(ctx, key, ttl, fetch); err != nil {
		return zero, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
