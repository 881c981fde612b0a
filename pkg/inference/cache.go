package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/openai/openai-go/v3"
	gocache "github.com/patrickmn/go-cache"
)

// CachedWriter memoizes story responses by prompt hash so a user who
// regenerates the same request (page refresh, double click) does not pay for
// a second completion.
type CachedWriter struct {
	inner Writer
	cache *gocache.Cache
}

// NewCached wraps a writer with an expiring response cache.
func NewCached(w Writer, ttl time.Duration) *CachedWriter {
	return &CachedWriter{
		inner: w,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedWriter) Generate(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	key := cacheKey(params, system, user)
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}
	out, err := c.inner.Generate(ctx, params, system, user)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, out, gocache.DefaultExpiration)
	return out, nil
}

func cacheKey(params *openai.ChatCompletionNewParams, system, user string) string {
	h := sha256.New()
	if params != nil {
		h.Write([]byte(params.Model))
	}
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}
