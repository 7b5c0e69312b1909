// Package credits tracks how many paid units each data provider consumed
// today against a configured daily cap.
//
// Spend is recorded after each successful billable call with no reservation
// step, so a batch may overshoot the cap by at most one batch. Days roll over
// implicitly: usage is keyed by UTC date.
package credits

import (
	"context"
	"sort"
	"time"

	"creator_scout/internal/metrics"
)

// Ledger is the budget check consulted before scheduled provider work.
type Ledger interface {
	// HasBudget reports whether provider may still be called today.
	// Providers without a cap always have budget.
	HasBudget(ctx context.Context, provider string) bool
	// Record adds units to provider's consumption for today.
	Record(ctx context.Context, provider string, units int64) error
	// Snapshot returns today's consumption for every capped or used provider.
	Snapshot(ctx context.Context) ([]Usage, error)
}

type Usage struct {
	Provider string
	Date     string
	Consumed int64
	// Cap is zero for uncapped providers.
	Cap int64
}

// Remaining returns the units left today, or -1 when uncapped.
func (u Usage) Remaining() int64 {
	if u.Cap <= 0 {
		return -1
	}
	return max(u.Cap-u.Consumed, 0)
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func within(cap, consumed int64) bool {
	return cap <= 0 || consumed < cap
}

func buildSnapshot(date string, caps map[string]int64, consumed map[string]int64) []Usage {
	names := make(map[string]struct{}, len(caps)+len(consumed))
	for p := range caps {
		names[p] = struct{}{}
	}
	for p := range consumed {
		names[p] = struct{}{}
	}

	out := make([]Usage, 0, len(names))
	for p := range names {
		out = append(out, Usage{Provider: p, Date: date, Consumed: consumed[p], Cap: caps[p]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

func publishCaps(caps map[string]int64) {
	for p, c := range caps {
		metrics.CreditsCap.WithLabelValues(p).Set(float64(c))
	}
}
