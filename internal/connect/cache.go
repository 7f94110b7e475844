package connect

import (
	"context"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Cache holds one authenticated Client per (login, password, domain) tuple
// so every conference sharing a tenant reuses a single session instead of
// logging in per request. Entries never expire; a configuration change must
// call Invalidate for the old tuple.
type Cache struct {
	clients *gocache.Cache
	logger  *zap.Logger
}

// NewCache creates an empty client cache.
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		clients: gocache.New(gocache.NoExpiration, 0),
		logger:  logger,
	}
}

// Get returns the cached client for the settings tuple, creating and
// logging in a new one on first use. A ConnectionError from the initial
// login is surfaced and nothing is cached.
func (c *Cache) Get(ctx context.Context, settings Settings) (*Client, error) {
	key := cacheKey(settings)
	if v, ok := c.clients.Get(key); ok {
		return v.(*Client), nil
	}

	client := NewClient(settings, c.logger)
	if err := client.LogIn(ctx); err != nil {
		return nil, err
	}
	c.clients.Set(key, client, gocache.NoExpiration)
	return client, nil
}

// Invalidate drops the cached client for the settings tuple. Call it when
// the plugin configuration changes.
func (c *Cache) Invalidate(settings Settings) {
	c.clients.Delete(cacheKey(settings))
}

func cacheKey(s Settings) string {
	return strings.Join([]string{s.Login, s.Password, strings.TrimRight(s.Domain, "/")}, "\x00")
}
