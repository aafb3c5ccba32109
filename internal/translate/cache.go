package translate

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 512

// Cached remembers successful translations by message text.
type Cached struct {
	inner Translator
	cache *lru.Cache[string, Result]
}

func NewCached(inner Translator, size int) *Cached {
	if size <= 0 {
		size = defaultCacheSize
	}
	// lru.New only fails for a non-positive size
	cache, _ := lru.New[string, Result](size)
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) Translate(ctx context.Context, text string) (Result, error) {
	if res, ok := c.cache.Get(text); ok {
		return res, nil
	}
	res, err := c.inner.Translate(ctx, text)
	if err != nil {
		return Result{}, err
	}
	c.cache.Add(text, res)
	return res, nil
}
