package infra

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"admission-gateway/middleware/admission/domain"
)

// RedisEventSink publica eventos de negação em Redis: o payload completo vai
// para uma lista (consumida por alerting downstream) e contadores por
// estratégia vão para um hash cumulativo.
//
// A lista é protegida por um throttle de publicação: uma enxurrada de
// negações não vira enxurrada de payloads (os contadores continuam contando
// tudo; só o payload é descartado).
type RedisEventSink struct {
	rdb *redis.Client

	prefix  string
	ttl     time.Duration
	listMax int64

	throttle *rate.Limiter
	dropped  atomic.Int64
}

type RedisEventOption func(*RedisEventSink)

func WithEventPrefix(prefix string) RedisEventOption {
	return func(s *RedisEventSink) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// WithEventTTL aplica TTL à lista de eventos. O hash de contadores é
// cumulativo e não expira.
func WithEventTTL(d time.Duration) RedisEventOption {
	return func(s *RedisEventSink) { s.ttl = d }
}

// WithEventListMax limita o tamanho da lista de eventos (LTRIM).
func WithEventListMax(n int64) RedisEventOption {
	return func(s *RedisEventSink) { s.listMax = n }
}

// WithEventThrottle limita a taxa de payloads publicados. perSecond <= 0
// desliga o throttle.
func WithEventThrottle(perSecond float64, burst int) RedisEventOption {
	return func(s *RedisEventSink) {
		if perSecond <= 0 {
			s.throttle = nil
			return
		}
		s.throttle = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func NewRedisEventSink(rdb *redis.Client, opts ...RedisEventOption) *RedisEventSink {
	s := &RedisEventSink{
		rdb:     rdb,
		prefix:  "admission:events",
		ttl:     24 * time.Hour,
		listMax: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisEventSink) Publish(ctx context.Context, ev domain.DeniedEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":denied", ev.Strategy.String(), 1)

	if s.throttle == nil || s.throttle.Allow() {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		listKey := s.prefix + ":recent"
		pipe.LPush(ctx, listKey, payload)
		if s.listMax > 0 {
			pipe.LTrim(ctx, listKey, 0, s.listMax-1)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, listKey, s.ttl)
		}
	} else {
		s.dropped.Add(1)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Dropped conta payloads descartados pelo throttle.
func (s *RedisEventSink) Dropped() int64 { return s.dropped.Load() }
