package connector_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"creator_scout/internal/connector"
	"creator_scout/internal/connector/mocks"
	"creator_scout/internal/credits"
	"creator_scout/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMetered_BillsSuccessfulCallsOnly(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	raw := mocks.NewMockConnector(ctrl)
	raw.EXPECT().Platform().Return(domain.PlatformTwitch).AnyTimes()

	ledger := credits.NewMemory(map[string]int64{"twitch-api": 3}, discardLogger())
	m := connector.NewMetered(raw, ledger, "twitch-api", 1, discardLogger())

	gomock.InOrder(
		raw.EXPECT().FetchCategoryPage(ctx, "g", 10, "").Return(connector.Page{}, nil),
		raw.EXPECT().FetchByIdentifiers(ctx, []string{"a"}).Return(nil, errors.New("boom")),
		raw.EXPECT().FetchFollowerCount(ctx, "a").Return(int64(10), nil),
	)

	_, err := m.FetchCategoryPage(ctx, "g", 10, "")
	require.NoError(t, err)
	_, err = m.FetchByIdentifiers(ctx, []string{"a"})
	require.Error(t, err)
	_, err = m.FetchFollowerCount(ctx, "a")
	require.NoError(t, err)

	snap, err := ledger.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, int64(2), snap[0].Consumed)
	assert.Equal(t, "twitch-api", connector.ProviderOf(m))
}

func TestBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	raw := mocks.NewMockConnector(ctrl)
	raw.EXPECT().Platform().Return(domain.PlatformKick).AnyTimes()

	b := connector.NewBreaker(raw, connector.BreakerSettings{
		MinRequests:  3,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		OpenTimeout:  time.Minute,
	}, discardLogger())

	raw.EXPECT().FetchByIdentifiers(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("upstream down")).Times(3)

	for i := 0; i < 3; i++ {
		_, err := b.FetchByIdentifiers(ctx, []string{"x"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, connector.ErrUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.FetchByIdentifiers(ctx, []string{"x"})
	assert.True(t, errors.Is(err, connector.ErrUnavailable))
}

func TestBreaker_AuthErrorsDoNotTrip(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	raw := mocks.NewMockConnector(ctrl)
	raw.EXPECT().Platform().Return(domain.PlatformTwitch).AnyTimes()

	b := connector.NewBreaker(raw, connector.BreakerSettings{
		MinRequests:  2,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		OpenTimeout:  time.Minute,
	}, discardLogger())

	raw.EXPECT().Search(gomock.Any(), "kw", 10, "").Return(connector.Page{}, connector.ErrAuth).Times(4)

	for i := 0; i < 4; i++ {
		_, err := b.Search(ctx, "kw", 10, "")
		assert.True(t, errors.Is(err, connector.ErrAuth))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_PassesResults(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	raw := mocks.NewMockConnector(ctrl)
	raw.EXPECT().Platform().Return(domain.PlatformTwitch).AnyTimes()

	b := connector.NewBreaker(raw, connector.DefaultBreakerSettings(), discardLogger())

	want := connector.Page{Items: []connector.Item{{Identifier: "a"}}, NextCursor: "c"}
	raw.EXPECT().FetchCategoryPage(ctx, "g", 5, "").Return(want, nil)

	got, err := b.FetchCategoryPage(ctx, "g", 5, "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "twitch", connector.ProviderOf(b))
}
