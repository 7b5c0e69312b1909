package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	"creator_scout/internal/connector/kick"
	"creator_scout/internal/connector/twitch"
	"creator_scout/internal/credits"
	"creator_scout/internal/dedup"
	"creator_scout/internal/discovery"
	"creator_scout/internal/domain"
	"creator_scout/internal/queue"
	"creator_scout/internal/scheduler"
	"creator_scout/internal/service"
	"creator_scout/internal/storage/postgres"
	"creator_scout/internal/tiering"
)

// supervisedQueue is a job queue that can run under the supervisor.
type supervisedQueue interface {
	queue.Queue
	Serve(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	runOnce := flag.String("run", "", "run one schedule immediately, drain the jobs it enqueued and exit")
	show := flag.String("show", "", "print the stored creator platform:identifier and exit")
	history := flag.Int("history", 0, "print the latest N job audit rows and exit")
	remove := flag.String("remove", "", "delete the comma-separated platform:identifier creators and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	ledger, err := setupLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up credit ledger", "error", err)
		os.Exit(1)
	}

	creators := postgres.NewCreatorStore(db)
	syncRuns := postgres.NewSyncRunStore(db)
	txManager := postgres.NewTransactionManager(db)

	connectors := setupConnectors(cfg, ledger, logger)
	if len(connectors) == 0 {
		logger.Warn("no connectors enabled")
	}

	cache := dedup.New(creators, logger)
	if err := cache.EnsureInitialized(ctx); err != nil {
		// Discovery retries the warm-up on its next run.
		logger.Warn("dedup cache warm-up failed", "error", err)
	}

	if *show != "" || *history > 0 || *remove != "" {
		admin := service.NewAdmin(creators, syncRuns, cache, logger)
		if err := runAdmin(ctx, admin, *show, *history, *remove); err != nil {
			logger.Error("admin command failed", "error", err)
			os.Exit(1)
		}
		return
	}

	disc := discovery.NewService(creators, cache, connectors, ledger, cfg.Discovery, logger)
	upserter := service.NewUpserter(creators, txManager, cache, logger)
	tiers := tiering.NewScheduler(creators, upserter, connectors, ledger, cfg.Tiers, logger)
	processor := service.NewProcessor(disc, tiers, upserter, syncRuns, connectors, ledger, cfg.Discovery, cfg.Tiers, logger)

	q, err := setupQueue(cfg, logger)
	if err != nil {
		logger.Error("failed to set up job queue", "error", err)
		os.Exit(1)
	}
	if closer, ok := q.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	if err := processor.Register(q, cfg.Queue); err != nil {
		logger.Error("failed to register job handlers", "error", err)
		os.Exit(1)
	}

	reporter := service.NewReporter(q, ledger, tiers, creators, cache, cfg.Queue.StallThreshold, cfg.Queue.StallBacklog, logger)

	schedules, err := scheduler.Build(cfg.Schedules, scheduler.Targets{Queue: q, Tiers: tiers, Reporter: reporter})
	if err != nil {
		logger.Error("failed to build schedules", "error", err)
		os.Exit(1)
	}
	sched := scheduler.NewScheduler(logger)
	for _, sc := range schedules {
		if err := sched.Add(sc); err != nil {
			logger.Error("failed to add schedule", "schedule", sc.Name, "error", err)
			os.Exit(1)
		}
	}

	if *runOnce != "" {
		if err := runSchedule(ctx, sched, q, *runOnce, logger); err != nil {
			logger.Error("run failed", "schedule", *runOnce, "error", err)
			os.Exit(1)
		}
		return
	}

	supervisor := suture.New("creator-scout", suture.Spec{
		EventHook: (&sutureslog.Handler{Logger: logger}).MustHook(),
	})
	supervisor.Add(q)
	supervisor.Add(sched)
	supervisor.Add(newMetricsServer(cfg.Metrics.Addr))

	logger.Info("starting creator scout",
		"platforms", len(connectors),
		"schedules", sched.Names(),
		"queue_backend", cfg.Queue.Backend,
		"metrics_addr", cfg.Metrics.Addr,
	)

	if err := supervisor.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (credits.Ledger, error) {
	caps := cfg.Credits.Caps()
	if cfg.Credits.Backend == "memory" {
		return credits.NewMemory(caps, logger), nil
	}

	client, err := credits.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis")
	return credits.NewRedis(client, caps, logger), nil
}

type platformClient struct {
	conn connector.Connector
	cfg  config.ConnectorConfig
}

// setupConnectors wraps each enabled platform client in a circuit breaker
// and bills it against the credit ledger.
func setupConnectors(cfg *config.Config, ledger credits.Ledger, logger *slog.Logger) map[domain.Platform]connector.Connector {
	var clients []platformClient
	if c := cfg.Connectors.Twitch; c.Enabled {
		clients = append(clients, platformClient{conn: twitch.New(c, logger), cfg: c})
	}
	if c := cfg.Connectors.Kick; c.Enabled {
		clients = append(clients, platformClient{conn: kick.New(c, logger), cfg: c})
	}

	out := make(map[domain.Platform]connector.Connector, len(clients))
	for _, pc := range clients {
		guarded := connector.NewBreaker(pc.conn, connector.DefaultBreakerSettings(), logger)
		out[pc.conn.Platform()] = connector.NewMetered(guarded, ledger, pc.cfg.Provider, pc.cfg.CostPerCall, logger)
	}
	return out
}

func setupQueue(cfg *config.Config, logger *slog.Logger) (supervisedQueue, error) {
	settings := queue.SettingsFrom(cfg.Queue)
	if cfg.Queue.Backend == "rabbitmq" {
		return queue.NewRabbitMQ(cfg.RabbitMQ, settings, logger)
	}
	return queue.NewMemory(settings, logger), nil
}

// runSchedule fires one schedule and runs the queue until nothing is
// waiting or active.
func runSchedule(ctx context.Context, sched *scheduler.Scheduler, q supervisedQueue, name string, logger *slog.Logger) error {
	if err := sched.RunNow(ctx, name); err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- q.Run(runCtx) }()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case <-ticker.C:
			counts, err := q.Counts(ctx)
			if err != nil {
				return err
			}
			if counts.Waiting == 0 && counts.Active == 0 {
				stop()
				<-done
				logger.Info("run completed", "schedule", name, "completed", counts.Completed, "failed", counts.Failed)
				return nil
			}
		}
	}
}

// runAdmin executes the operator commands given on the command line and
// writes their results to stdout as JSON.
func runAdmin(ctx context.Context, admin *service.Admin, show string, history int, remove string) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if show != "" {
		c, err := admin.Creator(ctx, show)
		if err != nil {
			return err
		}
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	if history > 0 {
		runs, err := admin.History(ctx, history)
		if err != nil {
			return err
		}
		if err := enc.Encode(runs); err != nil {
			return err
		}
	}
	if remove != "" {
		deleted, err := admin.Remove(ctx, strings.Split(remove, ","))
		if err != nil {
			return err
		}
		return enc.Encode(map[string]int64{"deleted": deleted})
	}
	return nil
}

// metricsServer serves Prometheus metrics under the supervisor.
type metricsServer struct {
	server *http.Server
}

func newMetricsServer(addr string) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &metricsServer{server: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func (m *metricsServer) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (m *metricsServer) String() string {
	return "metrics-server"
}
