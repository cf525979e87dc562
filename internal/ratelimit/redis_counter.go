package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments and arms the expiry in one server-side step, so a
// crash between the two commands cannot leave a counter without a TTL.
var incrScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisCounter shares counters between every process using the same Redis.
type RedisCounter struct {
	client redis.Scripter
}

func NewRedisCounter(client redis.Scripter) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := incrScript.Run(ctx, c.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis incr rate counter failed: %w", err)
	}
	return n, nil
}
