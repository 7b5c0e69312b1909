package queue

import (
	"sort"
	"sync"
	"time"
)

type activeJob struct {
	job          Job
	lastProgress time.Time
}

// tracker is the in-process bookkeeping both backends share: the active set
// and the bounded completed and failed histories.
type tracker struct {
	mu        sync.Mutex
	active    map[string]*activeJob
	completed []Job
	failed    []Job
	keepDone  int
	keepFail  int
	now       func() time.Time
}

func newTracker(keepCompleted, keepFailed int) *tracker {
	return &tracker{
		active:   make(map[string]*activeJob),
		keepDone: max(keepCompleted, 0),
		keepFail: max(keepFailed, 0),
		now:      time.Now,
	}
}

func (t *tracker) start(job Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[job.ID] = &activeJob{job: job, lastProgress: t.now()}
}

func (t *tracker) progress(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.active[id]; ok {
		a.lastProgress = t.now()
	}
}

func (t *tracker) finish(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, id)
}

func (t *tracker) complete(job Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed = appendBounded(t.completed, job, t.keepDone)
}

func (t *tracker) fail(job Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = appendBounded(t.failed, job, t.keepFail)
}

// appendBounded appends job and evicts the oldest entries beyond limit.
func appendBounded(history []Job, job Job, limit int) []Job {
	if limit == 0 {
		return history[:0]
	}
	history = append(history, job)
	if over := len(history) - limit; over > 0 {
		history = append(history[:0], history[over:]...)
	}
	return history
}

func (t *tracker) activeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *tracker) completedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}

func (t *tracker) failedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.failed)
}

func (t *tracker) completedJobs() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Job(nil), t.completed...)
}

func (t *tracker) failedJobs() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Job(nil), t.failed...)
}

func (t *tracker) stalled(threshold time.Duration) []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-threshold)
	var out []Job
	for _, a := range t.active {
		if a.lastProgress.Before(cutoff) {
			out = append(out, a.job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
