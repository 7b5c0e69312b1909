package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"creator_scout/internal/config"
	"creator_scout/internal/connector"
	connmocks "creator_scout/internal/connector/mocks"
	"creator_scout/internal/credits"
	"creator_scout/internal/discovery"
	"creator_scout/internal/domain"
	"creator_scout/internal/queue"
	"creator_scout/internal/service/mocks"
	tiermocks "creator_scout/internal/tiering/mocks"
)

type ProcessorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	discovery *mocks.MockDiscoverer
	tiers     *mocks.MockTierSyncer
	runs      *mocks.MockSyncRunStore
	writer    *tiermocks.MockWriter
	twitch    *connmocks.MockConnector
	ledger    *credits.Memory

	processor *Processor
	now       time.Time
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.discovery = mocks.NewMockDiscoverer(s.ctrl)
	s.tiers = mocks.NewMockTierSyncer(s.ctrl)
	s.runs = mocks.NewMockSyncRunStore(s.ctrl)
	s.writer = tiermocks.NewMockWriter(s.ctrl)
	s.twitch = connmocks.NewMockConnector(s.ctrl)
	s.twitch.EXPECT().Platform().Return(domain.PlatformTwitch).AnyTimes()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.ledger = credits.NewMemory(map[string]int64{"twitch": 10}, logger)

	discCfg := config.DiscoveryConfig{
		PageSize:      100,
		TrendingPages: 2,
		Platforms: map[string]config.PlatformDiscoveryConfig{
			"twitch": {Categories: []config.CategoryConfig{{ID: "slots"}, {ID: "poker"}}},
		},
	}
	tiersCfg := config.TiersConfig{BatchSize: 2, DispatchLimit: 500}

	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.processor = NewProcessor(
		s.discovery,
		s.tiers,
		s.writer,
		s.runs,
		map[domain.Platform]connector.Connector{domain.PlatformTwitch: s.twitch},
		s.ledger,
		discCfg,
		tiersCfg,
		logger,
	)
	s.processor.now = func() time.Time { return s.now }
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (s *ProcessorTestSuite) job(t domain.JobType, payload domain.JobPayload) *queue.Job {
	return &queue.Job{ID: "job-1", Type: t, Payload: payload, Attempts: 1}
}

func (s *ProcessorTestSuite) expectRun(check func(run *domain.SyncRun)) {
	s.runs.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *domain.SyncRun) error {
		check(run)
		return nil
	})
}

func (s *ProcessorTestSuite) TestHandle_FullDiscovery() {
	ctx := context.Background()
	ds := domain.NewDiscoveryStats()
	ds.AddCreated(domain.PlatformTwitch, domain.MethodCategory, 8)
	ds.AddSkipped(domain.PlatformTwitch, domain.MethodCategory, 3)
	ds.Filtered = 2
	ds.Failed = 1

	s.discovery.EXPECT().Run(ctx, discovery.Options{}).Return(ds, nil)
	s.expectRun(func(run *domain.SyncRun) {
		s.Equal("job-1", run.JobID)
		s.Equal("full", run.JobType)
		s.Equal(8, run.Created)
		s.Equal(14, run.Found)
		s.Equal(1, run.Errors)
		s.Empty(run.Error)
	})

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobFull, domain.JobPayload{})))
}

func (s *ProcessorTestSuite) TestHandle_IncrementalIsQuickAndScoped() {
	ctx := context.Background()
	opts := discovery.Options{Platforms: []domain.Platform{domain.PlatformTwitch}, Quick: true}

	s.discovery.EXPECT().Run(ctx, opts).Return(domain.NewDiscoveryStats(), nil)
	s.expectRun(func(run *domain.SyncRun) { s.Equal("twitch", run.Platform) })

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobIncremental, domain.JobPayload{Platform: domain.PlatformTwitch})))
}

func (s *ProcessorTestSuite) TestHandle_DiscoveryErrorIsRetryable() {
	ctx := context.Background()

	s.discovery.EXPECT().Run(ctx, gomock.Any()).Return(domain.NewDiscoveryStats(), errors.New("warm up dedup cache: timeout"))
	s.expectRun(func(run *domain.SyncRun) { s.Contains(run.Error, "timeout") })

	err := s.processor.Handle(ctx, s.job(domain.JobFull, domain.JobPayload{}))
	s.Require().Error(err)
	s.False(queue.IsPermanent(err))
}

func (s *ProcessorTestSuite) TestHandle_TrendingUpsertsFirstPagesOfTopCategory() {
	ctx := context.Background()
	page1 := []connector.Item{{Identifier: "a"}, {Identifier: "b"}}
	page2 := []connector.Item{{Identifier: "c"}}

	gomock.InOrder(
		s.twitch.EXPECT().FetchCategoryPage(ctx, "slots", 100, "").Return(connector.Page{Items: page1, NextCursor: "next"}, nil),
		s.writer.EXPECT().Apply(ctx, domain.PlatformTwitch, page1, "trending:slots").Return(&domain.SyncStats{Found: 2, Updated: 2}, nil),
		s.twitch.EXPECT().FetchCategoryPage(ctx, "slots", 100, "next").Return(connector.Page{Items: page2, NextCursor: "more"}, nil),
		s.writer.EXPECT().Apply(ctx, domain.PlatformTwitch, page2, "trending:slots").Return(&domain.SyncStats{Found: 1, Created: 1}, nil),
	)
	s.expectRun(func(run *domain.SyncRun) {
		s.Equal(3, run.Found)
		s.Equal(2, run.Updated)
		s.Equal(1, run.Created)
	})

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobTrending, domain.JobPayload{})))
}

func (s *ProcessorTestSuite) TestHandle_TrendingKeyword() {
	ctx := context.Background()

	s.twitch.EXPECT().Search(ctx, "roulette", 100, "").Return(connector.Page{}, nil)
	s.writer.EXPECT().Apply(ctx, domain.PlatformTwitch, gomock.Len(0), "trending:roulette").Return(&domain.SyncStats{}, nil)
	s.expectRun(func(*domain.SyncRun) {})

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobTrending, domain.JobPayload{Platform: domain.PlatformTwitch, Keyword: "roulette"})))
}

func (s *ProcessorTestSuite) TestHandle_TrendingSkipsWhenBudgetExhausted() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.Record(ctx, "twitch", 10))
	s.expectRun(func(run *domain.SyncRun) { s.Equal(0, run.Found) })

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobTrending, domain.JobPayload{})))
}

func (s *ProcessorTestSuite) TestHandle_TrendingFailureRetries() {
	ctx := context.Background()
	s.twitch.EXPECT().FetchCategoryPage(ctx, "slots", 100, "").Return(connector.Page{}, connector.ErrUnavailable)
	s.expectRun(func(run *domain.SyncRun) { s.NotEmpty(run.Error) })

	err := s.processor.Handle(ctx, s.job(domain.JobTrending, domain.JobPayload{}))
	s.ErrorIs(err, connector.ErrUnavailable)
}

func (s *ProcessorTestSuite) TestHandle_TrendingAuthFailureIsSkipped() {
	ctx := context.Background()
	s.twitch.EXPECT().FetchCategoryPage(ctx, "slots", 100, "").Return(connector.Page{}, connector.ErrAuth)
	s.expectRun(func(*domain.SyncRun) {})

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobTrending, domain.JobPayload{})))
}

func (s *ProcessorTestSuite) TestHandle_SpecificBatchesAndTouchesMissing() {
	ctx := context.Background()
	payload := domain.JobPayload{
		Platform:    domain.PlatformTwitch,
		Identifiers: []string{"https://twitch.tv/Alpha", "beta", "alpha", "gamma"},
	}

	gomock.InOrder(
		s.twitch.EXPECT().FetchByIdentifiers(ctx, []string{"alpha", "beta"}).
			Return([]connector.Item{{Identifier: "alpha"}}, nil),
		s.writer.EXPECT().Apply(ctx, domain.PlatformTwitch, gomock.Len(1), "specific").
			Return(&domain.SyncStats{Found: 1, Updated: 1}, nil),
		s.writer.EXPECT().Touch(ctx, domain.PlatformTwitch, []string{"beta"}, s.now).Return(nil),
		s.twitch.EXPECT().FetchByIdentifiers(ctx, []string{"gamma"}).
			Return([]connector.Item{{Identifier: "Gamma"}}, nil),
		s.writer.EXPECT().Apply(ctx, domain.PlatformTwitch, gomock.Len(1), "specific").
			Return(&domain.SyncStats{Found: 1, Created: 1}, nil),
	)
	s.expectRun(func(run *domain.SyncRun) {
		s.Equal(2, run.Found)
		s.Equal(1, run.Created)
	})

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobSpecific, payload)))
}

func (s *ProcessorTestSuite) TestHandle_SpecificValidation() {
	ctx := context.Background()
	s.runs.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	err := s.processor.Handle(ctx, s.job(domain.JobSpecific, domain.JobPayload{Platform: domain.PlatformTwitch}))
	s.True(queue.IsPermanent(err))

	err = s.processor.Handle(ctx, s.job(domain.JobSpecific, domain.JobPayload{Platform: domain.PlatformYouTube, Identifiers: []string{"x"}}))
	s.True(queue.IsPermanent(err))
}

func (s *ProcessorTestSuite) TestHandle_SpecificAuthIsPermanent() {
	ctx := context.Background()
	s.twitch.EXPECT().FetchByIdentifiers(ctx, []string{"a"}).Return(nil, connector.ErrAuth)
	s.expectRun(func(*domain.SyncRun) {})

	err := s.processor.Handle(ctx, s.job(domain.JobSpecific, domain.JobPayload{Platform: domain.PlatformTwitch, Identifiers: []string{"a"}}))
	s.True(queue.IsPermanent(err))
	s.ErrorIs(err, connector.ErrAuth)
}

func (s *ProcessorTestSuite) TestHandle_TierSync() {
	ctx := context.Background()
	s.tiers.EXPECT().Dispatch(ctx, domain.TierHot, domain.Platform(""), 500).Return(&domain.SyncStats{Found: 4, Updated: 4}, nil)
	s.expectRun(func(run *domain.SyncRun) {
		s.Equal("tier-sync", run.JobType)
		s.Equal(4, run.Updated)
	})

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobTierSync, domain.JobPayload{Tier: "hot"})))
}

func (s *ProcessorTestSuite) TestHandle_TierSyncUnknownTier() {
	s.runs.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	err := s.processor.Handle(context.Background(), s.job(domain.JobTierSync, domain.JobPayload{Tier: "LUKEWARM"}))
	s.True(queue.IsPermanent(err))
}

func (s *ProcessorTestSuite) TestHandle_UnknownType() {
	s.runs.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	err := s.processor.Handle(context.Background(), s.job("reindex", domain.JobPayload{}))
	s.True(queue.IsPermanent(err))
	s.ErrorIs(err, queue.ErrUnknownType)
}

func (s *ProcessorTestSuite) TestHandle_AuditFailureDoesNotFailJob() {
	ctx := context.Background()
	s.tiers.EXPECT().Dispatch(ctx, domain.TierCold, domain.PlatformTwitch, 10).Return(&domain.SyncStats{}, nil)
	s.runs.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	s.NoError(s.processor.Handle(ctx, s.job(domain.JobTierSync, domain.JobPayload{Tier: domain.TierCold, Platform: domain.PlatformTwitch, Limit: 10})))
}

func (s *ProcessorTestSuite) TestRegister_AllJobTypes() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	q := queue.NewMemory(queue.Settings{MaxAttempts: 1}, logger)

	s.Require().NoError(s.processor.Register(q, config.QueueConfig{}))
	for _, t := range domain.JobTypes {
		_, err := q.Enqueue(context.Background(), queue.Job{Type: t})
		s.NoError(err, t)
	}

	s.ErrorIs(s.processor.Register(q, config.QueueConfig{}), queue.ErrAlreadyRegistered)
}
