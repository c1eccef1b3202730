package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facebrain/internal/domain/user"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - user:{user_id} - profile cache; entries only ever moves forward in it

// CacheConfig contains configuration for caching
type CacheConfig struct {
	UserTTL time.Duration
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// storeNewerScript overwrites the cached user unless the cached copy already
// has at least as many entries.
// KEYS[1] = cache key
// ARGV[1] = encoded user
// ARGV[2] = entries of the encoded user
// ARGV[3] = ttl in milliseconds, 0 for none
var storeNewerScript = goredis.NewScript(`
local cached = redis.call('GET', KEYS[1])
if cached then
	local ok, decoded = pcall(cjson.decode, cached)
	if ok and type(decoded) == 'table' and tonumber(decoded['entries']) and tonumber(decoded['entries']) >= tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// GetUser retrieves a user from cache. A miss returns (nil, nil).
func (c *CacheStore) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	data, err := c.client.Get(ctx, userKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FillUser caches a user read from the store, but only when no copy is cached.
// A concurrent UpdateUser therefore always wins over a slower read.
func (c *CacheStore) FillUser(ctx context.Context, u user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, userKey(u.ID), data, c.config.UserTTL).Err()
}

// UpdateUser caches a freshly written user unless a copy with at least as many
// entries is already cached.
func (c *CacheStore) UpdateUser(ctx context.Context, u user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return storeNewerScript.Run(ctx, c.client,
		[]string{userKey(u.ID)},
		string(data), u.Entries, c.config.UserTTL.Milliseconds(),
	).Err()
}

func userKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
