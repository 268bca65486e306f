// Package ratelimit holds the Redis backed fixed-window limiter guarding
// the login and password-reset endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const fixedWindowLua = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// Limiter allows Limit hits per key within each Window.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	Limit  int
	Window time.Duration
	script *redis.Script
}

func New(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		prefix: "qa-forum:ratelimit:" + prefix + ":",
		Limit:  limit,
		Window: window,
		script: redis.NewScript(fixedWindowLua),
	}
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l == nil || l.Limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	res, err := l.script.Run(ctx, l.rdb, []string{l.prefix + key}, l.Window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit eval: %w", err)
	}
	values, ok := res.([]interface{})
	if !ok || len(values) < 2 {
		return Decision{}, fmt.Errorf("ratelimit invalid result")
	}
	count := toInt64(values[0])
	ttl := time.Duration(toInt64(values[1])) * time.Millisecond
	if ttl < 0 {
		ttl = l.Window
	}

	d := Decision{Allowed: count <= int64(l.Limit)}
	if d.Allowed {
		d.Remaining = l.Limit - int(count)
	} else {
		d.RetryAfter = ttl
	}
	return d, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}
