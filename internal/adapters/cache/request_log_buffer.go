package cache

import (
	"context"
	"encoding/json"
	"strings"

	"outsized-identity/internal/core/services"

	"github.com/redis/go-redis/v9"
)

const logKeyPrefix = "logs:requests:"

// RedisRequestLogBuffer implements services.RequestLogBuffer. Admitted
// requests are appended to a per-IP list; the sync job drains the lists
// into the relational store.
type RedisRequestLogBuffer struct {
	rdb *redis.Client
}

// NewRedisRequestLogBuffer creates a request log buffer
func NewRedisRequestLogBuffer(rdb *redis.Client) *RedisRequestLogBuffer {
	return &RedisRequestLogBuffer{rdb: rdb}
}

// Append buffers one request log entry under its IP
func (b *RedisRequestLogBuffer) Append(ctx context.Context, entry services.RequestLogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.rdb.RPush(ctx, logKeyPrefix+entry.IP, payload).Err()
}

// Drain returns all buffered entries and removes them. Entries appended
// between the read and the delete of a key are lost; the buffer is an
// operational log, not an audit trail.
func (b *RedisRequestLogBuffer) Drain(ctx context.Context) ([]services.RequestLogEntry, error) {
	var entries []services.RequestLogEntry

	iter := b.rdb.Scan(ctx, 0, logKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ip := strings.TrimPrefix(key, logKeyPrefix)

		raw, err := b.rdb.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return entries, err
		}
		if len(raw) == 0 {
			continue
		}

		for _, item := range raw {
			var entry services.RequestLogEntry
			if err := json.Unmarshal([]byte(item), &entry); err != nil {
				// skip malformed entries rather than wedging the sync
				continue
			}
			entry.IP = ip
			entries = append(entries, entry)
		}

		if err := b.rdb.Del(ctx, key).Err(); err != nil {
			return entries, err
		}
	}
	if err := iter.Err(); err != nil {
		return entries, err
	}

	return entries, nil
}
