package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout, shared across process instances:
//
//	blocklist:ip              set of hard-blocked IPs
//	whitelist:ip              set of IPs that bypass the counter
//	ratelimit:bucket:<ip>     hash {tokens, ts} maintained by the Lua script
//	ratelimit:cooldown:<ip>   string key with TTL, presence means cooldown
const (
	blocklistKey   = "blocklist:ip"
	whitelistKey   = "whitelist:ip"
	bucketPrefix   = "ratelimit:bucket:"
	cooldownPrefix = "ratelimit:cooldown:"
)

// consumeScript is a token bucket: capacity tokens refilled continuously
// over the window. Runs server-side so the read-refill-consume sequence is
// atomic in a single round trip.
var consumeScript = redis.NewScript(`
local key      = KEYS[1]
local capacity = tonumber(ARGV[1])
local window   = tonumber(ARGV[2])
local now      = tonumber(ARGV[3])

local rate = capacity / window

local bucket = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts     = tonumber(bucket[2])

if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = math.max(0, now - ts)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', key, window * 2)

return allowed
`)

// RedisLimiterStore implements services.LimiterStore on the shared
// counter store.
type RedisLimiterStore struct {
	rdb      *redis.Client
	capacity int
	window   int
}

// NewRedisLimiterStore creates a limiter store with the given budget
// (capacity units refilled continuously over window seconds).
func NewRedisLimiterStore(rdb *redis.Client, capacity, windowSeconds int) *RedisLimiterStore {
	return &RedisLimiterStore{
		rdb:      rdb,
		capacity: capacity,
		window:   windowSeconds,
	}
}

// IsBlocklisted checks block-list membership
func (s *RedisLimiterStore) IsBlocklisted(ctx context.Context, ip string) (bool, error) {
	return s.rdb.SIsMember(ctx, blocklistKey, ip).Result()
}

// IsAllowlisted checks allow-list membership
func (s *RedisLimiterStore) IsAllowlisted(ctx context.Context, ip string) (bool, error) {
	return s.rdb.SIsMember(ctx, whitelistKey, ip).Result()
}

// InCooldown reports whether the IP is serving a cooldown
func (s *RedisLimiterStore) InCooldown(ctx context.Context, ip string) (bool, error) {
	n, err := s.rdb.Exists(ctx, cooldownPrefix+ip).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Consume takes one unit from the IP's budget atomically
func (s *RedisLimiterStore) Consume(ctx context.Context, ip string) (bool, error) {
	now := float64(time.Now().UnixMicro()) / 1e6
	allowed, err := consumeScript.Run(ctx, s.rdb,
		[]string{bucketPrefix + ip},
		s.capacity, s.window, now,
	).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// PlaceCooldown puts the IP under a cooldown for the given duration
func (s *RedisLimiterStore) PlaceCooldown(ctx context.Context, ip string, duration time.Duration) error {
	return s.rdb.Set(ctx, cooldownPrefix+ip, 1, duration).Err()
}
