package refdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginboard/marginboard/internal/shared"
)

type priceKey struct {
	site    string
	product string
}

type spendKey struct {
	day  string
	site string
}

type mockRepo struct {
	prices map[priceKey]ProductPrice
	rates  map[string]CommissionRate
	spends map[spendKey]AdSpend
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		prices: make(map[priceKey]ProductPrice),
		rates:  make(map[string]CommissionRate),
		spends: make(map[spendKey]AdSpend),
	}
}

func (m *mockRepo) ListPrices(ctx context.Context) ([]ProductPrice, error) {
	out := make([]ProductPrice, 0, len(m.prices))
	for _, p := range m.prices {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) UpsertPrice(ctx context.Context, price ProductPrice) error {
	m.prices[priceKey{site: price.Site, product: price.Product}] = price
	return nil
}

func (m *mockRepo) DeletePrice(ctx context.Context, site, product string) error {
	key := priceKey{site: site, product: product}
	if _, ok := m.prices[key]; !ok {
		return shared.ErrNotFound
	}
	delete(m.prices, key)
	return nil
}

func (m *mockRepo) ListRates(ctx context.Context) ([]CommissionRate, error) {
	out := make([]CommissionRate, 0, len(m.rates))
	for _, r := range m.rates {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepo) UpsertRate(ctx context.Context, rate CommissionRate) error {
	m.rates[rate.Site] = rate
	return nil
}

func (m *mockRepo) DeleteRate(ctx context.Context, site string) error {
	if _, ok := m.rates[site]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rates, site)
	return nil
}

func (m *mockRepo) ListAdSpend(ctx context.Context) ([]AdSpend, error) {
	out := make([]AdSpend, 0, len(m.spends))
	for _, a := range m.spends {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockRepo) UpsertAdSpend(ctx context.Context, spend AdSpend) error {
	m.spends[spendKey{day: spend.Day.Format("2006-01-02"), site: spend.Site}] = spend
	return nil
}

func (m *mockRepo) DeleteAdSpend(ctx context.Context, day time.Time, site string) error {
	key := spendKey{day: day.Format("2006-01-02"), site: site}
	if _, ok := m.spends[key]; !ok {
		return shared.ErrNotFound
	}
	delete(m.spends, key)
	return nil
}

type mockInvalidator struct {
	bumps int
}

func (m *mockInvalidator) Bump(ctx context.Context) error {
	m.bumps++
	return nil
}

type mockWarmQueue struct {
	reasons []string
}

func (m *mockWarmQueue) EnqueueRollupWarm(ctx context.Context, reason string) error {
	m.reasons = append(m.reasons, reason)
	return nil
}

func TestUpsertPriceOverwrites(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, service.UpsertPrice(ctx, ProductPrice{Site: "amazon", Product: "widget", UnitPrice: 100}))
	require.NoError(t, service.UpsertPrice(ctx, ProductPrice{Site: " amazon ", Product: " widget ", UnitPrice: 120}))

	prices, err := service.ListPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, int64(120), prices[0].UnitPrice)
}

func TestUpsertPriceValidation(t *testing.T) {
	service := NewService(newMockRepo(), nil, nil)
	ctx := context.Background()

	assert.Error(t, service.UpsertPrice(ctx, ProductPrice{Site: "", Product: "widget", UnitPrice: 100}))
	assert.Error(t, service.UpsertPrice(ctx, ProductPrice{Site: "amazon", Product: "", UnitPrice: 100}))
	assert.Error(t, service.UpsertPrice(ctx, ProductPrice{Site: "amazon", Product: "widget", UnitPrice: -1}))
	assert.NoError(t, service.UpsertPrice(ctx, ProductPrice{Site: "amazon", Product: "widget", UnitPrice: 0}))
}

func TestUpsertRateBounds(t *testing.T) {
	service := NewService(newMockRepo(), nil, nil)
	ctx := context.Background()

	assert.Error(t, service.UpsertRate(ctx, CommissionRate{Site: "amazon", Rate: -0.1}))
	assert.Error(t, service.UpsertRate(ctx, CommissionRate{Site: "amazon", Rate: 100.1}))
	assert.NoError(t, service.UpsertRate(ctx, CommissionRate{Site: "amazon", Rate: 0}))
	assert.NoError(t, service.UpsertRate(ctx, CommissionRate{Site: "amazon", Rate: 100}))
}

func TestUpsertAdSpendTruncatesDay(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo, nil, nil)
	ctx := context.Background()

	spend := AdSpend{
		Day:    time.Date(2026, 8, 1, 15, 4, 5, 0, time.UTC),
		Site:   "amazon",
		Amount: 500,
	}
	require.NoError(t, service.UpsertAdSpend(ctx, spend))

	spends, err := service.ListAdSpend(ctx)
	require.NoError(t, err)
	require.Len(t, spends, 1)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), spends[0].Day)
}

func TestMutationsBumpCache(t *testing.T) {
	repo := newMockRepo()
	invalidator := &mockInvalidator{}
	warm := &mockWarmQueue{}
	service := NewService(repo, invalidator, warm)
	ctx := context.Background()
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, service.UpsertPrice(ctx, ProductPrice{Site: "amazon", Product: "widget", UnitPrice: 100}))
	require.NoError(t, service.UpsertRate(ctx, CommissionRate{Site: "amazon", Rate: 10}))
	require.NoError(t, service.UpsertAdSpend(ctx, AdSpend{Day: day, Site: "amazon", Amount: 500}))
	require.NoError(t, service.DeletePrice(ctx, "amazon", "widget"))
	require.NoError(t, service.DeleteRate(ctx, "amazon"))
	require.NoError(t, service.DeleteAdSpend(ctx, day, "amazon"))

	assert.Equal(t, 6, invalidator.bumps)
	require.Len(t, warm.reasons, 6)
	for _, reason := range warm.reasons {
		assert.Equal(t, "mutation", reason)
	}
}

func TestDeleteMissingEntries(t *testing.T) {
	invalidator := &mockInvalidator{}
	warm := &mockWarmQueue{}
	service := NewService(newMockRepo(), invalidator, warm)
	ctx := context.Background()

	assert.ErrorIs(t, service.DeletePrice(ctx, "amazon", "widget"), shared.ErrNotFound)
	assert.ErrorIs(t, service.DeleteRate(ctx, "amazon"), shared.ErrNotFound)
	assert.ErrorIs(t, service.DeleteAdSpend(ctx, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "amazon"), shared.ErrNotFound)
	assert.Zero(t, invalidator.bumps)
	assert.Empty(t, warm.reasons)
}
