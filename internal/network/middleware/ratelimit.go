package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/denmor86/ya-questpoints/internal/helpers"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// фиксированное окно: счётчик живёт window миллисекунд с первого запроса
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// Limiter - счётчик запросов субъекта в окне
type Limiter interface {
	Consume(ctx context.Context, scope string, subject string, limit int, window time.Duration) (count int, retryAfter int, err error)
}

// RedisLimiter - распределённое ограничение частоты запросов на Redis
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLimiter(client redis.UniversalClient, prefix string) *RedisLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "questpoints:ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

// Consume увеличивает счётчик и возвращает его значение и секунды до сброса окна
func (r *RedisLimiter) Consume(ctx context.Context, scope string, subject string, limit int, window time.Duration) (int, int, error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return 0, 0, nil
	}
	windowMs := max(window.Milliseconds(), 1000)

	key := fmt.Sprintf("%s:%s:%s", r.prefix, scope, subject)
	raw, err := rateLimitScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis limiter response: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter count: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok || ttlMs < 0 {
		ttlMs = windowMs
	}
	retryAfter := max(int(math.Ceil(float64(ttlMs)/1000.0)), 1)
	return int(count), retryAfter, nil
}

// RateLimit ограничивает число запросов пользователя в окне.
// Без лимитера или при ошибке Redis запрос пропускается.
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := helpers.GetUserID(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			count, retryAfter, err := limiter.Consume(r.Context(), scope, userID, limit, window)
			if err != nil {
				logger.Warnw("Rate limiter unavailable", "scope", scope, zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if count > limit {
				logger.Warnw("Rate limit exceeded", "scope", scope, "user", userID, "count", count)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
