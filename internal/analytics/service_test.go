package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginboard/marginboard/internal/refdata"
	"github.com/marginboard/marginboard/internal/sales"
)

type mockRepo struct {
	events []sales.Event
	prices []refdata.ProductPrice
	rates  []refdata.CommissionRate
	spends []refdata.AdSpend

	eventsErr error
	listCalls int
}

func (m *mockRepo) ListEvents(ctx context.Context) ([]sales.Event, error) {
	m.listCalls++
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	return m.events, nil
}

func (m *mockRepo) ListPrices(ctx context.Context) ([]refdata.ProductPrice, error) {
	return m.prices, nil
}

func (m *mockRepo) ListRates(ctx context.Context) ([]refdata.CommissionRate, error) {
	return m.rates, nil
}

func (m *mockRepo) ListAdSpend(ctx context.Context) ([]refdata.AdSpend, error) {
	return m.spends, nil
}

type countingObserver struct {
	runs int
}

func (o *countingObserver) ObserveRollupRun() { o.runs++ }

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func seedRepo() *mockRepo {
	return &mockRepo{
		events: []sales.Event{
			{Day: day("2026-08-01"), Site: "amazon", Product: "widget", Quantity: 5},
		},
		prices: []refdata.ProductPrice{
			{Site: "amazon", Product: "widget", UnitPrice: 100},
		},
		rates: []refdata.CommissionRate{
			{Site: "amazon", Rate: 10},
		},
		spends: []refdata.AdSpend{
			{Day: day("2026-08-01"), Site: "amazon", Amount: 500},
		},
	}
}

func TestServiceComputesSummaries(t *testing.T) {
	repo := seedRepo()
	service := NewService(repo, nil, nil)

	rows, err := service.GetDailySummaries(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, -50.0, rows[0].NetProfit)
}

func TestServiceCachesSummaries(t *testing.T) {
	repo := seedRepo()
	observer := &countingObserver{}
	service := NewService(repo, newTestCache(t), observer)
	ctx := context.Background()

	first, err := service.GetDailySummaries(ctx)
	require.NoError(t, err)
	second, err := service.GetDailySummaries(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, observer.runs)
}

func TestServiceRecomputesAfterInvalidate(t *testing.T) {
	repo := seedRepo()
	service := NewService(repo, newTestCache(t), nil)
	ctx := context.Background()

	_, err := service.GetDailySummaries(ctx)
	require.NoError(t, err)

	repo.events = append(repo.events, sales.Event{
		Day: day("2026-08-02"), Site: "amazon", Product: "widget", Quantity: 1,
	})

	stale, err := service.GetDailySummaries(ctx)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	require.NoError(t, service.InvalidateCache(ctx))

	fresh, err := service.GetDailySummaries(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestServiceTrendFollowsSummaries(t *testing.T) {
	repo := seedRepo()
	repo.events = append(repo.events, sales.Event{
		Day: day("2026-08-02"), Site: "amazon", Product: "widget", Quantity: 5,
	})
	repo.spends = repo.spends[:1]
	service := NewService(repo, newTestCache(t), nil)

	points, err := service.GetProfitTrend(context.Background())

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, -50.0, points[0].Total)
	assert.Equal(t, 400.0, points[1].Total)
}

func TestServicePropagatesRepositoryErrors(t *testing.T) {
	repo := seedRepo()
	repo.eventsErr = errors.New("connection reset")
	service := NewService(repo, newTestCache(t), nil)

	_, err := service.GetDailySummaries(context.Background())

	assert.ErrorContains(t, err, "connection reset")
}

func TestServiceWarmPrimesCache(t *testing.T) {
	repo := seedRepo()
	service := NewService(repo, newTestCache(t), nil)
	ctx := context.Background()

	require.NoError(t, service.Warm(ctx))

	before := repo.listCalls
	_, err := service.GetDailySummaries(ctx)
	require.NoError(t, err)
	_, err = service.GetProfitTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, repo.listCalls)
}
