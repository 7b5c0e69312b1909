package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"creator_scout/internal/metrics"
)

const (
	redisKeyPrefix = "scout:credits:"
	// Keys outlive their day so yesterday's snapshot is still inspectable.
	redisKeyTTL = 48 * time.Hour
)

// Redis is a Ledger shared by every process pointed at the same Redis. Usage
// lives in one hash per UTC date, one field per provider.
type Redis struct {
	client *redis.Client
	caps   map[string]int64
	logger *slog.Logger
	now    func() time.Time
}

// Connect initializes a Redis client from URL or host:port input.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func NewRedis(client *redis.Client, caps map[string]int64, logger *slog.Logger) *Redis {
	publishCaps(caps)
	return &Redis{
		client: client,
		caps:   caps,
		logger: logger.With("component", "credits"),
		now:    time.Now,
	}
}

func (r *Redis) key(t time.Time) string {
	return redisKeyPrefix + dateKey(t)
}

// HasBudget fails closed: when the ledger cannot be read, capped providers are
// treated as exhausted.
func (r *Redis) HasBudget(ctx context.Context, provider string) bool {
	c := r.caps[provider]
	if c <= 0 {
		return true
	}

	consumed, err := r.client.HGet(ctx, r.key(r.now()), provider).Int64()
	if errors.Is(err, redis.Nil) {
		return true
	}
	if err != nil {
		r.logger.Warn("read credit ledger failed, treating provider as exhausted",
			"provider", provider,
			"error", err,
		)
		return false
	}
	return within(c, consumed)
}

func (r *Redis) Record(ctx context.Context, provider string, units int64) error {
	if units <= 0 {
		return nil
	}

	key := r.key(r.now())
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, key, provider, units)
		p.Expire(ctx, key, redisKeyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record credits: %w", err)
	}

	consumed := incr.Val()
	metrics.CreditsConsumed.WithLabelValues(provider).Set(float64(consumed))
	if c := r.caps[provider]; c > 0 && consumed >= c && consumed-units < c {
		r.logger.Warn("provider reached daily credit cap", "provider", provider, "consumed", consumed, "cap", c)
	}
	return nil
}

func (r *Redis) Snapshot(ctx context.Context) ([]Usage, error) {
	now := r.now()
	raw, err := r.client.HGetAll(ctx, r.key(now)).Result()
	if err != nil {
		return nil, fmt.Errorf("read credit ledger: %w", err)
	}

	consumed := make(map[string]int64, len(raw))
	for p, v := range raw {
		n, convErr := strconv.ParseInt(v, 10, 64)
		if convErr != nil {
			continue
		}
		consumed[p] = n
	}
	return buildSnapshot(dateKey(now), r.caps, consumed), nil
}
