package ml

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedPredictor memoises predictions of an immutable model. Cached frames
// are shared between callers and must be treated as read-only.
type CachedPredictor struct {
	next  Predictor
	cache *lru.Cache[string, Frame]
	onHit func()
}

func NewCachedPredictor(next Predictor, size int, onHit func()) (*CachedPredictor, error) {
	cache, err := lru.New[string, Frame](size)
	if err != nil {
		return nil, err
	}
	return &CachedPredictor{next: next, cache: cache, onHit: onHit}, nil
}

func (c *CachedPredictor) Predict(ctx context.Context, input Frame) (Frame, error) {
	key, err := json.Marshal(input)
	if err != nil {
		return c.next.Predict(ctx, input)
	}
	if output, ok := c.cache.Get(string(key)); ok {
		if c.onHit != nil {
			c.onHit()
		}
		return output, nil
	}
	output, err := c.next.Predict(ctx, input)
	if err != nil {
		return Frame{}, err
	}
	c.cache.Add(string(key), output)
	return output, nil
}

func (c *CachedPredictor) Len() int {
	return c.cache.Len()
}
