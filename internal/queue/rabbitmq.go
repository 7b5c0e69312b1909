package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"creator_scout/internal/config"
	"creator_scout/internal/domain"
)

const maxPriority = 10

// ErrConnectionLost is returned by Run when the broker connection or a
// consumer channel closes underneath it.
var ErrConnectionLost = errors.New("rabbitmq connection lost")

type rabbitLane struct {
	handler Handler
	opts    Options
	key     string
	queue   string
	retry   string
	failed  string
}

// RabbitMQ is a durable Queue. Each job type gets a priority queue bound to
// a direct exchange, a retry queue whose messages dead-letter back into the
// exchange once their per-message TTL expires, and a length-bounded failed
// queue. A Run that lost its connection re-dials on the next call.
type RabbitMQ struct {
	url      string
	exchange string
	prefix   string
	exec     *executor
	logger   *slog.Logger

	// chMu guards conn and ch. ch serializes publishing and inspection;
	// consumers use their own channels.
	chMu sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel

	mu      sync.Mutex
	lanes   map[domain.JobType]*rabbitLane
	running bool
}

var _ Queue = (*RabbitMQ)(nil)

func NewRabbitMQ(cfg config.RabbitMQConfig, settings Settings, logger *slog.Logger) (*RabbitMQ, error) {
	logger = logger.With("component", "queue", "backend", "rabbitmq")
	r := &RabbitMQ{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		prefix:   cfg.QueuePrefix,
		exec:     newExecutor(settings, logger),
		logger:   logger,
		lanes:    make(map[domain.JobType]*rabbitLane),
	}

	r.chMu.Lock()
	err := r.connectLocked(nil)
	r.chMu.Unlock()
	if err != nil {
		return nil, err
	}

	logger.Info("connected to rabbitmq", "exchange", cfg.Exchange, "queue_prefix", cfg.QueuePrefix)
	return r, nil
}

// connectLocked dials the broker, declares the exchange and re-declares the
// queues of lanes. chMu must be held.
func (r *RabbitMQ) connectLocked(lanes []*rabbitLane) error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		r.exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	r.conn, r.ch = conn, ch
	for _, l := range lanes {
		if err := r.declareLocked(l); err != nil {
			r.closeLocked()
			return err
		}
	}
	return nil
}

// ensureConnected re-dials when the connection or the publishing channel
// has closed.
func (r *RabbitMQ) ensureConnected(lanes []*rabbitLane) error {
	r.chMu.Lock()
	defer r.chMu.Unlock()

	if r.conn != nil && !r.conn.IsClosed() && r.ch != nil && !r.ch.IsClosed() {
		return nil
	}
	r.closeLocked()
	if err := r.connectLocked(lanes); err != nil {
		return err
	}
	r.logger.Info("reconnected to rabbitmq")
	return nil
}

func (r *RabbitMQ) closeLocked() {
	if r.ch != nil {
		_ = r.ch.Close()
		r.ch = nil
	}
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
}

// Register declares the queues of jobType and binds them to the exchange.
func (r *RabbitMQ) Register(jobType domain.JobType, h Handler, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrRunning
	}
	if _, ok := r.lanes[jobType]; ok {
		return fmt.Errorf("register %s: %w", jobType, ErrAlreadyRegistered)
	}

	l := &rabbitLane{
		handler: h,
		opts:    Options{Concurrency: max(opts.Concurrency, 1), Timeout: opts.Timeout},
		key:     string(jobType),
		queue:   r.prefix + string(jobType),
		retry:   r.prefix + string(jobType) + ".retry",
		failed:  r.prefix + string(jobType) + ".failed",
	}

	r.chMu.Lock()
	defer r.chMu.Unlock()

	if r.ch == nil {
		return fmt.Errorf("register %s: %w", jobType, ErrConnectionLost)
	}
	if err := r.declareLocked(l); err != nil {
		return err
	}

	r.lanes[jobType] = l
	return nil
}

// declareLocked declares the queues of l and binds the main queue to the
// exchange. chMu must be held.
func (r *RabbitMQ) declareLocked(l *rabbitLane) error {
	if _, err := r.ch.QueueDeclare(l.queue, true, false, false, false, amqp.Table{
		"x-max-priority": int32(maxPriority),
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", l.queue, err)
	}
	if err := r.ch.QueueBind(l.queue, l.key, r.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", l.queue, err)
	}

	if _, err := r.ch.QueueDeclare(l.retry, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    r.exchange,
		"x-dead-letter-routing-key": l.key,
	}); err != nil {
		return fmt.Errorf("declare retry queue %s: %w", l.retry, err)
	}

	failedArgs := amqp.Table{}
	if keep := r.exec.settings.FailedRetention; keep > 0 {
		failedArgs["x-max-length"] = int32(keep)
	}
	if _, err := r.ch.QueueDeclare(l.failed, true, false, false, false, failedArgs); err != nil {
		return fmt.Errorf("declare failed queue %s: %w", l.failed, err)
	}
	return nil
}

func (r *RabbitMQ) lane(t domain.JobType) (*rabbitLane, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lanes[t]
	return l, ok
}

func (r *RabbitMQ) Enqueue(ctx context.Context, job Job) (string, error) {
	if _, ok := r.lane(job.Type); !ok {
		return "", fmt.Errorf("enqueue %s: %w", job.Type, ErrUnknownType)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.exec.prepare(&job)

	if err := r.publish(ctx, r.exchange, string(job.Type), job, ""); err != nil {
		return "", err
	}

	r.logger.Debug("job enqueued", "job_id", job.ID, "job_type", job.Type, "priority", job.Priority)
	return job.ID, nil
}

func (r *RabbitMQ) publish(ctx context.Context, exchange, key string, job Job, expiration string) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	r.chMu.Lock()
	defer r.chMu.Unlock()

	if r.ch == nil {
		return fmt.Errorf("publish job %s: %w", job.ID, ErrConnectionLost)
	}
	err = r.ch.PublishWithContext(
		ctx,
		exchange,
		key,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    job.ID,
			Priority:     uint8(min(max(job.Priority, 0), maxPriority)),
			Expiration:   expiration,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	return nil
}

// Run consumes every registered queue with prefetch equal to the type's
// concurrency and blocks until ctx is cancelled. It returns
// ErrConnectionLost when the broker goes away; the next Run reconnects.
func (r *RabbitMQ) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRunning
	}
	r.running = true
	lanes := make([]*rabbitLane, 0, len(r.lanes))
	for _, l := range r.lanes {
		lanes = append(lanes, l)
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if err := r.ensureConnected(lanes); err != nil {
		return err
	}
	r.chMu.Lock()
	conn := r.conn
	r.chMu.Unlock()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	lost := make(chan error, 1)
	markLost := func(err error) {
		select {
		case lost <- err:
		default:
		}
	}

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		select {
		case amqpErr := <-connClosed:
			if amqpErr != nil {
				markLost(fmt.Errorf("%w: %s", ErrConnectionLost, amqpErr.Reason))
				return
			}
			markLost(ErrConnectionLost)
		case <-runCtx.Done():
		}
	}()

	var wg sync.WaitGroup
	var channels []*amqp.Channel
	defer func() {
		for _, ch := range channels {
			_ = ch.Close()
		}
	}()

	for _, l := range lanes {
		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open consumer channel: %w", err)
		}
		channels = append(channels, ch)

		if err := ch.Qos(l.opts.Concurrency, 0, false); err != nil {
			return fmt.Errorf("set prefetch for %s: %w", l.queue, err)
		}

		deliveries, err := ch.ConsumeWithContext(runCtx, l.queue, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", l.queue, err)
		}

		for i := 0; i < l.opts.Concurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !r.work(runCtx, l, deliveries) {
					markLost(fmt.Errorf("%w: consumer for %s closed", ErrConnectionLost, l.queue))
				}
			}()
		}
	}

	r.logger.Info("queue started", "types", len(lanes))

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-lost:
		r.logger.Error("queue lost broker connection", "error", runErr)
	}
	stop()
	wg.Wait()
	r.logger.Info("queue stopped")
	return runErr
}

// Serve adapts Run to a supervised service.
func (r *RabbitMQ) Serve(ctx context.Context) error {
	return r.Run(ctx)
}

// work handles deliveries until ctx is done or the delivery channel closes.
// It reports false when the channel closed while ctx was still live.
func (r *RabbitMQ) work(ctx context.Context, l *rabbitLane, deliveries <-chan amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case d, ok := <-deliveries:
			if !ok {
				return ctx.Err() != nil
			}
			r.handle(ctx, l, d)
		}
	}
}

func (r *RabbitMQ) handle(ctx context.Context, l *rabbitLane, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		r.logger.Error("discarding malformed job", "queue", l.queue, "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	out, delay := r.exec.attempt(ctx, l.handler, l.opts, &job)

	// Publish the follow-up before acking so a crash in between duplicates
	// rather than loses the job.
	pubCtx := context.WithoutCancel(ctx)
	var err error
	switch out {
	case outcomeRetry:
		err = r.publish(pubCtx, "", l.retry, job, strconv.FormatInt(max(delay.Milliseconds(), 1), 10))
	case outcomeFailed:
		err = r.publish(pubCtx, "", l.failed, job, "")
	}
	if err != nil {
		r.logger.Error("publish job follow-up failed, requeueing", "job_id", job.ID, "error", err)
		_ = d.Nack(false, true)
		return
	}

	if err := d.Ack(false); err != nil {
		r.logger.Warn("ack job failed", "job_id", job.ID, "error", err)
	}
}

// Counts reads waiting and failed totals from the broker. Active and
// completed are this process's view.
func (r *RabbitMQ) Counts(context.Context) (Counts, error) {
	r.mu.Lock()
	lanes := make([]*rabbitLane, 0, len(r.lanes))
	for _, l := range r.lanes {
		lanes = append(lanes, l)
	}
	r.mu.Unlock()

	r.chMu.Lock()
	defer r.chMu.Unlock()

	if r.ch == nil {
		return Counts{}, fmt.Errorf("inspect queues: %w", ErrConnectionLost)
	}
	c := Counts{
		Active:    r.exec.tracker.activeCount(),
		Completed: r.exec.tracker.completedCount(),
	}
	for _, l := range lanes {
		for _, name := range []string{l.queue, l.retry} {
			q, err := r.ch.QueueDeclarePassive(name, true, false, false, false, nil)
			if err != nil {
				return Counts{}, fmt.Errorf("inspect queue %s: %w", name, err)
			}
			c.Waiting += q.Messages
		}
		q, err := r.ch.QueueDeclarePassive(l.failed, true, false, false, false, nil)
		if err != nil {
			return Counts{}, fmt.Errorf("inspect queue %s: %w", l.failed, err)
		}
		c.Failed += q.Messages
	}

	publishCounts(c)
	return c, nil
}

func (r *RabbitMQ) Failed() []Job    { return r.exec.tracker.failedJobs() }
func (r *RabbitMQ) Completed() []Job { return r.exec.tracker.completedJobs() }

func (r *RabbitMQ) Stalled(threshold time.Duration) []Job {
	return r.exec.tracker.stalled(threshold)
}

func (r *RabbitMQ) Close() error {
	r.chMu.Lock()
	defer r.chMu.Unlock()
	r.closeLocked()
	return nil
}
