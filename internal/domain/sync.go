package domain

import (
	"sort"
	"time"
)

// SyncStats holds statistics about a refresh of existing creators.
type SyncStats struct {
	Platform Platform
	Found    int
	Created  int
	Updated  int
	Skipped  int
	Errors   int
	Duration time.Duration
}

func (s *SyncStats) Add(o *SyncStats) {
	if o == nil {
		return
	}
	s.Found += o.Found
	s.Created += o.Created
	s.Updated += o.Updated
	s.Skipped += o.Skipped
	s.Errors += o.Errors
}

// CountKey groups discovery counters by platform and provenance method.
type CountKey struct {
	Platform Platform
	Method   string
}

// DiscoveryStats holds statistics about a discovery run.
type DiscoveryStats struct {
	Created  map[CountKey]int
	Skipped  map[CountKey]int
	Filtered int
	Failed   int
	Duration time.Duration
}

func NewDiscoveryStats() *DiscoveryStats {
	return &DiscoveryStats{
		Created: make(map[CountKey]int),
		Skipped: make(map[CountKey]int),
	}
}

func (s *DiscoveryStats) AddCreated(p Platform, method string, n int) {
	s.Created[CountKey{Platform: p, Method: method}] += n
}

func (s *DiscoveryStats) AddSkipped(p Platform, method string, n int) {
	s.Skipped[CountKey{Platform: p, Method: method}] += n
}

func (s *DiscoveryStats) CreatedFor(p Platform) int {
	total := 0
	for k, n := range s.Created {
		if k.Platform == p {
			total += n
		}
	}
	return total
}

func (s *DiscoveryStats) TotalCreated() int {
	return sum(s.Created)
}

func (s *DiscoveryStats) TotalSkipped() int {
	return sum(s.Skipped)
}

func (s *DiscoveryStats) Merge(o *DiscoveryStats) {
	if o == nil {
		return
	}
	for k, n := range o.Created {
		s.Created[k] += n
	}
	for k, n := range o.Skipped {
		s.Skipped[k] += n
	}
	s.Filtered += o.Filtered
	s.Failed += o.Failed
}

// Keys returns every counter key seen by the run in a stable order.
func (s *DiscoveryStats) Keys() []CountKey {
	seen := make(map[CountKey]struct{})
	for k := range s.Created {
		seen[k] = struct{}{}
	}
	for k := range s.Skipped {
		seen[k] = struct{}{}
	}
	keys := make([]CountKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Platform != keys[j].Platform {
			return keys[i].Platform < keys[j].Platform
		}
		return keys[i].Method < keys[j].Method
	})
	return keys
}

func sum(m map[CountKey]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// SyncRun is one row of the job audit trail.
type SyncRun struct {
	ID         int64     `db:"id"`
	JobID      string    `db:"job_id"`
	JobType    string    `db:"job_type"`
	Platform   string    `db:"platform"`
	Found      int       `db:"found"`
	Created    int       `db:"created"`
	Updated    int       `db:"updated"`
	Errors     int       `db:"errors"`
	DurationMS int64     `db:"duration_ms"`
	Error      string    `db:"error"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}
