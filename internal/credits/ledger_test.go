package credits

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMemory_CapExhaustedThenRollsOver(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	l := NewMemory(map[string]int64{"twitch-api": 100}, discardLogger(), WithClock(clock.now))

	for i := 0; i < 100; i++ {
		require.True(t, l.HasBudget(ctx, "twitch-api"), "call %d", i)
		require.NoError(t, l.Record(ctx, "twitch-api", 1))
	}
	assert.False(t, l.HasBudget(ctx, "twitch-api"))

	clock.t = clock.t.Add(14 * time.Hour)
	assert.True(t, l.HasBudget(ctx, "twitch-api"))

	snap, err := l.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "2026-03-02", snap[0].Date)
	assert.Equal(t, int64(0), snap[0].Consumed)
	assert.Equal(t, int64(100), snap[0].Remaining())
}

func TestMemory_UncappedProviderAlwaysHasBudget(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(map[string]int64{"twitch-api": 10}, discardLogger())

	require.NoError(t, l.Record(ctx, "kick-api", 1_000_000))
	assert.True(t, l.HasBudget(ctx, "kick-api"))

	snap, err := l.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "kick-api", snap[0].Provider)
	assert.Equal(t, int64(-1), snap[0].Remaining())
	assert.Equal(t, "twitch-api", snap[1].Provider)
	assert.Equal(t, int64(10), snap[1].Remaining())
}

func TestMemory_IgnoresNonPositiveUnits(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(map[string]int64{"p": 1}, discardLogger())

	require.NoError(t, l.Record(ctx, "p", 0))
	require.NoError(t, l.Record(ctx, "p", -5))
	assert.True(t, l.HasBudget(ctx, "p"))
}

func newTestRedis(t *testing.T, caps map[string]int64) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, caps, discardLogger()), mr
}

func TestRedis_RecordAndExhaust(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestRedis(t, map[string]int64{"twitch-api": 3})
	day := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	for i := 0; i < 3; i++ {
		require.True(t, l.HasBudget(ctx, "twitch-api"))
		require.NoError(t, l.Record(ctx, "twitch-api", 1))
	}
	assert.False(t, l.HasBudget(ctx, "twitch-api"))

	key := redisKeyPrefix + "2026-03-01"
	assert.Equal(t, "3", mr.HGet(key, "twitch-api"))
	assert.Greater(t, mr.TTL(key), 24*time.Hour)

	day = day.Add(2 * time.Hour)
	assert.True(t, l.HasBudget(ctx, "twitch-api"))
}

func TestRedis_Snapshot(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestRedis(t, map[string]int64{"a": 10})
	fixed := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	require.NoError(t, l.Record(ctx, "a", 4))
	require.NoError(t, l.Record(ctx, "b", 2))

	snap, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Usage{
		{Provider: "a", Date: "2026-05-05", Consumed: 4, Cap: 10},
		{Provider: "b", Date: "2026-05-05", Consumed: 2},
	}, snap)
}

func TestRedis_FailsClosedWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestRedis(t, map[string]int64{"capped": 10})
	mr.Close()

	assert.False(t, l.HasBudget(ctx, "capped"))
	assert.True(t, l.HasBudget(ctx, "uncapped"))
	assert.Error(t, l.Record(ctx, "capped", 1))
}

func TestConnect(t *testing.T) {
	c, err := Connect(context.Background(), "redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Options().DB)

	c, err = Connect(context.Background(), "localhost:6380")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", c.Options().Addr)
}
