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

	"creator_scout/internal/connector"
	"creator_scout/internal/dedup"
	"creator_scout/internal/domain"
	"creator_scout/internal/service/mocks"
)

type emptyLister struct{}

func (emptyLister) ListIdentifiers(context.Context) (map[domain.Platform][]string, error) {
	return map[domain.Platform][]string{}, nil
}

type UpserterTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	creators  *mocks.MockCreatorStore
	txManager *mocks.MockTransactionManager
	cache     *dedup.Cache

	upserter *Upserter
	now      time.Time
}

func (s *UpserterTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.creators = mocks.NewMockCreatorStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.cache = dedup.New(emptyLister{}, logger)

	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.upserter = NewUpserter(s.creators, s.txManager, s.cache, logger)
	s.upserter.now = func() time.Time { return s.now }
}

func (s *UpserterTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestUpserterTestSuite(t *testing.T) {
	suite.Run(t, new(UpserterTestSuite))
}

func (s *UpserterTestSuite) passThroughTx() {
	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
}

func (s *UpserterTestSuite) TestApply_CreatesUnknownCreators() {
	ctx := context.Background()
	items := []connector.Item{{Identifier: "Newbie", Label: "Music", IsLive: true, Viewers: 42, Title: "late night piano"}}

	s.creators.EXPECT().GetMany(ctx, domain.PlatformTwitch, []string{"newbie"}).Return(map[string]*domain.Creator{}, nil)
	s.creators.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *domain.Creator) (bool, error) {
		s.Equal("newbie", c.Identifier)
		s.Equal("trending:music", c.Provenance)
		s.Equal(domain.CategoryMusic, c.Category)
		s.Equal(domain.TierHot, c.Tier)
		s.Require().Len(c.RecentTitles, 1)
		return true, nil
	})

	stats, err := s.upserter.Apply(ctx, domain.PlatformTwitch, items, "trending:music")
	s.Require().NoError(err)
	s.Equal(1, stats.Found)
	s.Equal(1, stats.Created)
	s.True(s.cache.Exists(domain.PlatformTwitch, "newbie"))
}

func (s *UpserterTestSuite) TestApply_RefreshesAndReclassifiesExisting() {
	ctx := context.Background()
	existing := &domain.Creator{
		ID:           7,
		Platform:     domain.PlatformTwitch,
		Identifier:   "shroud",
		ContentLabel: "Just Chatting",
		Category:     domain.CategoryIRL,
		PeakViewers:  300,
		Provenance:   "category:just-chatting",
	}
	items := []connector.Item{{Identifier: "Shroud", Label: "Slots", IsLive: true, Viewers: 500, Title: "big wins"}}

	s.creators.EXPECT().GetMany(ctx, domain.PlatformTwitch, []string{"shroud"}).
		Return(map[string]*domain.Creator{"shroud": existing}, nil)
	s.passThroughTx()
	s.creators.EXPECT().Update(ctx, existing).DoAndReturn(func(_ context.Context, c *domain.Creator) error {
		s.Equal(domain.CategoryIGaming, c.Category)
		s.Equal("Slots", c.ContentLabel)
		s.EqualValues(500, *c.Viewers)
		s.EqualValues(500, c.PeakViewers)
		s.Equal("category:just-chatting", c.Provenance)
		s.Equal(s.now, *c.LastSyncedAt)
		return nil
	})

	stats, err := s.upserter.Apply(ctx, domain.PlatformTwitch, items, "specific")
	s.Require().NoError(err)
	s.Equal(1, stats.Updated)
	s.Equal(0, stats.Created)
}

func (s *UpserterTestSuite) TestApply_ConcurrentInsertCountsAsUpdated() {
	ctx := context.Background()
	items := []connector.Item{{Identifier: "racer"}, {Identifier: "RACER"}}

	s.creators.EXPECT().GetMany(ctx, domain.PlatformKick, []string{"racer"}).Return(nil, nil)
	s.creators.EXPECT().Upsert(ctx, gomock.Any()).Return(false, nil)

	stats, err := s.upserter.Apply(ctx, domain.PlatformKick, items, "trending:slots")
	s.Require().NoError(err)
	s.Equal(2, stats.Found)
	s.Equal(0, stats.Created)
	s.Equal(1, stats.Updated)
	s.True(s.cache.Exists(domain.PlatformKick, "racer"))
}

func (s *UpserterTestSuite) TestApply_FailedTransactionCountsErrors() {
	ctx := context.Background()
	existing := map[string]*domain.Creator{
		"a": {ID: 1, Identifier: "a"},
		"b": {ID: 2, Identifier: "b"},
	}

	s.creators.EXPECT().GetMany(ctx, domain.PlatformTwitch, []string{"a", "b"}).Return(existing, nil)
	s.passThroughTx()
	s.creators.EXPECT().Update(ctx, existing["a"]).Return(nil)
	s.creators.EXPECT().Update(ctx, existing["b"]).Return(errors.New("deadlock detected"))

	stats, err := s.upserter.Apply(ctx, domain.PlatformTwitch, []connector.Item{{Identifier: "a"}, {Identifier: "b"}}, "specific")
	s.Require().NoError(err)
	s.Equal(2, stats.Errors)
	s.Equal(0, stats.Updated)
}

func (s *UpserterTestSuite) TestApply_CreateFailureNotCached() {
	ctx := context.Background()

	s.creators.EXPECT().GetMany(ctx, domain.PlatformTwitch, []string{"ghost"}).Return(nil, nil)
	s.creators.EXPECT().Upsert(ctx, gomock.Any()).Return(false, errors.New("connection reset"))

	stats, err := s.upserter.Apply(ctx, domain.PlatformTwitch, []connector.Item{{Identifier: "ghost"}}, "specific")
	s.Require().NoError(err)
	s.Equal(1, stats.Errors)
	s.False(s.cache.Exists(domain.PlatformTwitch, "ghost"))
}

func (s *UpserterTestSuite) TestApply_LookupErrorReturned() {
	ctx := context.Background()
	s.creators.EXPECT().GetMany(ctx, domain.PlatformTwitch, []string{"a"}).Return(nil, errors.New("db down"))

	_, err := s.upserter.Apply(ctx, domain.PlatformTwitch, []connector.Item{{Identifier: "a"}}, "specific")
	s.Error(err)
}

func (s *UpserterTestSuite) TestApply_EmptyBatchTouchesNothing() {
	stats, err := s.upserter.Apply(context.Background(), domain.PlatformTwitch, nil, "specific")
	s.Require().NoError(err)
	s.Equal(0, stats.Found)
}

func (s *UpserterTestSuite) TestTouch() {
	ctx := context.Background()
	s.creators.EXPECT().TouchSynced(ctx, domain.PlatformTwitch, []string{"gone"}, s.now).Return(nil)
	s.NoError(s.upserter.Touch(ctx, domain.PlatformTwitch, []string{"gone"}, s.now))
}
