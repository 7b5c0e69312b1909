package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"creator_scout/internal/domain"
)

type MemoryQueueTestSuite struct {
	suite.Suite

	queue  *Memory
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	delaysMu sync.Mutex
	delays   []time.Duration
}

func (s *MemoryQueueTestSuite) SetupTest() {
	s.queue = NewMemory(Settings{
		MaxAttempts:        3,
		BaseBackoff:        10 * time.Millisecond,
		MaxBackoff:         time.Second,
		CompletedRetention: 5,
		FailedRetention:    2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.delays = nil
	s.queue.after = func(d time.Duration, f func()) {
		s.delaysMu.Lock()
		s.delays = append(s.delays, d)
		s.delaysMu.Unlock()
		go f()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan struct{})
}

func (s *MemoryQueueTestSuite) TearDownTest() {
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		s.Fail("queue did not stop")
	}
}

func (s *MemoryQueueTestSuite) start() {
	go func() {
		defer close(s.done)
		_ = s.queue.Run(s.ctx)
	}()
}

func (s *MemoryQueueTestSuite) waitCounts(pred func(Counts) bool) Counts {
	var last Counts
	s.Require().Eventually(func() bool {
		c, _ := s.queue.Counts(context.Background())
		last = c
		return pred(c)
	}, 5*time.Second, 5*time.Millisecond)
	return last
}

func TestMemoryQueueTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryQueueTestSuite))
}

func (s *MemoryQueueTestSuite) TestRetriesWithIncreasingBackoffThenFails() {
	var calls atomic.Int32
	s.Require().NoError(s.queue.Register(domain.JobFull, func(ctx context.Context, job *Job) error {
		calls.Add(1)
		return errors.New("connector down")
	}, Options{Concurrency: 1}))
	s.start()

	_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobFull})
	s.Require().NoError(err)

	s.waitCounts(func(c Counts) bool { return c.Failed == 1 })

	s.Equal(int32(3), calls.Load())
	failed := s.queue.Failed()
	s.Require().Len(failed, 1)
	s.Equal(3, failed[0].Attempts)
	s.Equal("connector down", failed[0].LastError)
	s.Empty(s.queue.Completed())

	s.delaysMu.Lock()
	defer s.delaysMu.Unlock()
	s.Equal([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, s.delays)
}

func (s *MemoryQueueTestSuite) TestSuccessOnLaterAttemptIsNotRetriedAgain() {
	var calls atomic.Int32
	s.Require().NoError(s.queue.Register(domain.JobSpecific, func(ctx context.Context, job *Job) error {
		if calls.Add(1) < 2 {
			return errors.New("flaky")
		}
		return nil
	}, Options{Concurrency: 1}))
	s.start()

	id, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobSpecific})
	s.Require().NoError(err)

	s.waitCounts(func(c Counts) bool { return c.Completed == 1 })
	time.Sleep(50 * time.Millisecond)

	s.Equal(int32(2), calls.Load())
	done := s.queue.Completed()
	s.Require().Len(done, 1)
	s.Equal(id, done[0].ID)
	s.Equal(2, done[0].Attempts)
	s.Empty(s.queue.Failed())
}

func (s *MemoryQueueTestSuite) TestPermanentErrorSkipsRetries() {
	var calls atomic.Int32
	s.Require().NoError(s.queue.Register(domain.JobSpecific, func(ctx context.Context, job *Job) error {
		calls.Add(1)
		return Permanent(errors.New("bad payload"))
	}, Options{Concurrency: 1}))
	s.start()

	_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobSpecific})
	s.Require().NoError(err)

	s.waitCounts(func(c Counts) bool { return c.Failed == 1 })
	s.Equal(int32(1), calls.Load())
}

func (s *MemoryQueueTestSuite) TestConcurrencyCapPerType() {
	var running, peak atomic.Int32
	release := make(chan struct{})

	s.Require().NoError(s.queue.Register(domain.JobSpecific, func(ctx context.Context, job *Job) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return nil
	}, Options{Concurrency: 3}))
	s.start()

	for i := 0; i < 10; i++ {
		_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobSpecific})
		s.Require().NoError(err)
	}

	c := s.waitCounts(func(c Counts) bool { return c.Active == 3 })
	s.Equal(7, c.Waiting)

	close(release)
	s.waitCounts(func(c Counts) bool { return c.Completed == 5 && c.Waiting == 0 && c.Active == 0 })
	s.Equal(int32(3), peak.Load())
}

func (s *MemoryQueueTestSuite) TestHistoryIsBoundedFIFO() {
	s.Require().NoError(s.queue.Register(domain.JobTrending, func(ctx context.Context, job *Job) error {
		if job.Payload.Keyword == "fail" {
			return Permanent(errors.New("nope"))
		}
		return nil
	}, Options{Concurrency: 1}))

	for i := 0; i < 8; i++ {
		_, err := s.queue.Enqueue(s.ctx, Job{ID: string(rune('a' + i)), Type: domain.JobTrending})
		s.Require().NoError(err)
	}
	for i := 0; i < 3; i++ {
		_, err := s.queue.Enqueue(s.ctx, Job{
			ID:      string(rune('x' + i)),
			Type:    domain.JobTrending,
			Payload: domain.JobPayload{Keyword: "fail"},
		})
		s.Require().NoError(err)
	}
	s.start()

	s.Require().Eventually(func() bool {
		failed := s.queue.Failed()
		return len(failed) == 2 && failed[1].ID == "z"
	}, 5*time.Second, 5*time.Millisecond)

	done := s.queue.Completed()
	s.Require().Len(done, 5)
	s.Equal("d", done[0].ID)
	s.Equal("h", done[4].ID)

	failed := s.queue.Failed()
	s.Require().Len(failed, 2)
	s.Equal("y", failed[0].ID)
	s.Equal("z", failed[1].ID)
}

func (s *MemoryQueueTestSuite) TestPriorityOrderWithinType() {
	var mu sync.Mutex
	var order []string
	s.Require().NoError(s.queue.Register(domain.JobTierSync, func(ctx context.Context, job *Job) error {
		mu.Lock()
		order = append(order, job.ID)
		mu.Unlock()
		return nil
	}, Options{Concurrency: 1}))

	for _, j := range []Job{
		{ID: "low", Priority: PriorityLow},
		{ID: "normal", Priority: PriorityNormal},
		{ID: "high", Priority: PriorityHigh},
		{ID: "normal-2", Priority: PriorityNormal},
	} {
		j.Type = domain.JobTierSync
		_, err := s.queue.Enqueue(s.ctx, j)
		s.Require().NoError(err)
	}
	s.start()

	s.waitCounts(func(c Counts) bool { return c.Completed == 4 })
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"high", "normal", "normal-2", "low"}, order)
}

func (s *MemoryQueueTestSuite) TestStalledDetection() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.Require().NoError(s.queue.Register(domain.JobFull, func(ctx context.Context, job *Job) error {
		close(started)
		<-release
		return nil
	}, Options{Concurrency: 1}))
	s.start()

	_, err := s.queue.Enqueue(s.ctx, Job{ID: "slow", Type: domain.JobFull})
	s.Require().NoError(err)
	<-started

	s.Empty(s.queue.Stalled(time.Hour))
	time.Sleep(20 * time.Millisecond)
	stalled := s.queue.Stalled(10 * time.Millisecond)
	s.Require().Len(stalled, 1)
	s.Equal("slow", stalled[0].ID)

	close(release)
	s.waitCounts(func(c Counts) bool { return c.Completed == 1 })
	s.Empty(s.queue.Stalled(0))
}

func (s *MemoryQueueTestSuite) TestProgressHeartbeatResetsStall() {
	beat := make(chan struct{})
	beaten := make(chan struct{})
	release := make(chan struct{})
	s.Require().NoError(s.queue.Register(domain.JobFull, func(ctx context.Context, job *Job) error {
		<-beat
		Progress(ctx)
		close(beaten)
		<-release
		return nil
	}, Options{Concurrency: 1}))
	s.start()

	_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobFull})
	s.Require().NoError(err)

	s.waitCounts(func(c Counts) bool { return c.Active == 1 })
	time.Sleep(30 * time.Millisecond)
	s.Len(s.queue.Stalled(20*time.Millisecond), 1)

	close(beat)
	<-beaten
	s.Empty(s.queue.Stalled(20 * time.Millisecond))
	close(release)
}

func (s *MemoryQueueTestSuite) TestTimeoutCancelsHandler() {
	s.Require().NoError(s.queue.Register(domain.JobFull, func(ctx context.Context, job *Job) error {
		<-ctx.Done()
		return Permanent(ctx.Err())
	}, Options{Concurrency: 1, Timeout: 20 * time.Millisecond}))
	s.start()

	_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobFull})
	s.Require().NoError(err)

	s.waitCounts(func(c Counts) bool { return c.Failed == 1 })
	s.Contains(s.queue.Failed()[0].LastError, "deadline exceeded")
}

func (s *MemoryQueueTestSuite) TestPanicIsRecoveredAsFailure() {
	s.Require().NoError(s.queue.Register(domain.JobFull, func(ctx context.Context, job *Job) error {
		panic("boom")
	}, Options{Concurrency: 1}))
	s.start()

	_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobFull, MaxAttempts: 1})
	s.Require().NoError(err)

	s.waitCounts(func(c Counts) bool { return c.Failed == 1 })
	s.Contains(s.queue.Failed()[0].LastError, "boom")
}

func (s *MemoryQueueTestSuite) TestEnqueueUnknownType() {
	_, err := s.queue.Enqueue(s.ctx, Job{Type: domain.JobFull})
	s.True(errors.Is(err, ErrUnknownType))
	s.start()
}

func (s *MemoryQueueTestSuite) TestRegisterTwice() {
	h := func(context.Context, *Job) error { return nil }
	s.Require().NoError(s.queue.Register(domain.JobFull, h, Options{}))
	s.True(errors.Is(s.queue.Register(domain.JobFull, h, Options{}), ErrAlreadyRegistered))
	s.start()
}

func TestBackoff(t *testing.T) {
	base, capped := time.Second, 10*time.Second
	assert.Equal(t, time.Second, Backoff(1, base, capped))
	assert.Equal(t, 2*time.Second, Backoff(2, base, capped))
	assert.Equal(t, 4*time.Second, Backoff(3, base, capped))
	assert.Equal(t, 8*time.Second, Backoff(4, base, capped))
	assert.Equal(t, 10*time.Second, Backoff(5, base, capped))
	assert.Equal(t, 10*time.Second, Backoff(60, base, capped))
	assert.Equal(t, time.Second, Backoff(0, base, capped))
}

func TestCountsStalled(t *testing.T) {
	assert.True(t, Counts{Waiting: 11}.Stalled(10))
	assert.False(t, Counts{Waiting: 11, Active: 1}.Stalled(10))
	assert.False(t, Counts{Waiting: 10}.Stalled(10))
}

func TestPermanent(t *testing.T) {
	base := errors.New("x")
	err := Permanent(base)
	require.True(t, IsPermanent(err))
	assert.True(t, errors.Is(err, base))
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Permanent(nil))
}
