package queue

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"creator_scout/internal/domain"
)

type memoryItem struct {
	job Job
	seq uint64
}

// jobHeap orders by priority, then enqueue order.
type jobHeap []memoryItem

func (h jobHeap) Len() int { return len(h) }
func (h jobHeap) Less(i, j int) bool {
	if h[i].job.Priority != h[j].job.Priority {
		return h[i].job.Priority > h[j].job.Priority
	}
	return h[i].seq < h[j].seq
}
func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)   { *h = append(*h, x.(memoryItem)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

type lane struct {
	handler Handler
	opts    Options
	pending jobHeap
	delayed int
	wake    chan struct{}
}

// Memory is an in-process Queue. Jobs are lost on restart.
type Memory struct {
	exec   *executor
	logger *slog.Logger
	// after schedules retries; replaced in tests.
	after func(d time.Duration, f func())

	mu      sync.Mutex
	lanes   map[domain.JobType]*lane
	seq     uint64
	running bool
}

var _ Queue = (*Memory)(nil)

func NewMemory(settings Settings, logger *slog.Logger) *Memory {
	logger = logger.With("component", "queue", "backend", "memory")
	return &Memory{
		exec:   newExecutor(settings, logger),
		logger: logger,
		after:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		lanes:  make(map[domain.JobType]*lane),
	}
}

func (q *Memory) Register(jobType domain.JobType, h Handler, opts Options) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrRunning
	}
	if _, ok := q.lanes[jobType]; ok {
		return fmt.Errorf("register %s: %w", jobType, ErrAlreadyRegistered)
	}
	opts.Concurrency = max(opts.Concurrency, 1)
	q.lanes[jobType] = &lane{
		handler: h,
		opts:    opts,
		wake:    make(chan struct{}, opts.Concurrency),
	}
	return nil
}

func (q *Memory) Enqueue(_ context.Context, job Job) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	l, ok := q.lanes[job.Type]
	if !ok {
		return "", fmt.Errorf("enqueue %s: %w", job.Type, ErrUnknownType)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	q.exec.prepare(&job)
	q.pushLocked(l, job)
	return job.ID, nil
}

func (q *Memory) pushLocked(l *lane, job Job) {
	q.seq++
	heap.Push(&l.pending, memoryItem{job: job, seq: q.seq})
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (q *Memory) pop(l *lane) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if l.pending.Len() == 0 {
		return Job{}, false
	}
	return heap.Pop(&l.pending).(memoryItem).job, true
}

// Run starts Concurrency workers per registered type and blocks until ctx is
// cancelled and every in-flight attempt has returned.
func (q *Memory) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return ErrRunning
	}
	q.running = true
	lanes := make(map[domain.JobType]*lane, len(q.lanes))
	for t, l := range q.lanes {
		lanes[t] = l
	}
	q.mu.Unlock()

	q.logger.Info("queue started", "types", len(lanes))

	var wg sync.WaitGroup
	for _, l := range lanes {
		for i := 0; i < l.opts.Concurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				q.work(ctx, l)
			}()
		}
	}
	wg.Wait()

	q.mu.Lock()
	q.running = false
	q.mu.Unlock()

	q.logger.Info("queue stopped")
	return nil
}

// Serve adapts Run to a supervised service.
func (q *Memory) Serve(ctx context.Context) error {
	return q.Run(ctx)
}

func (q *Memory) work(ctx context.Context, l *lane) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, ok := q.pop(l)
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-l.wake:
				continue
			}
		}

		out, delay := q.exec.attempt(ctx, l.handler, l.opts, &job)
		if out != outcomeRetry {
			continue
		}

		q.mu.Lock()
		l.delayed++
		q.mu.Unlock()

		retry := job
		q.after(delay, func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			l.delayed--
			q.pushLocked(l, retry)
		})
	}
}

func (q *Memory) Counts(context.Context) (Counts, error) {
	q.mu.Lock()
	waiting := 0
	for _, l := range q.lanes {
		waiting += l.pending.Len() + l.delayed
	}
	q.mu.Unlock()

	c := Counts{
		Waiting:   waiting,
		Active:    q.exec.tracker.activeCount(),
		Completed: q.exec.tracker.completedCount(),
		Failed:    q.exec.tracker.failedCount(),
	}
	publishCounts(c)
	return c, nil
}

func (q *Memory) Failed() []Job    { return q.exec.tracker.failedJobs() }
func (q *Memory) Completed() []Job { return q.exec.tracker.completedJobs() }

func (q *Memory) Stalled(threshold time.Duration) []Job {
	return q.exec.tracker.stalled(threshold)
}
