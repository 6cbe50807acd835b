package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/marginboard/marginboard/internal/refdata"
	"github.com/marginboard/marginboard/internal/sales"
)

// Repository exposes the snapshot reads the rollup joins over.
type Repository interface {
	ListEvents(ctx context.Context) ([]sales.Event, error)
	ListPrices(ctx context.Context) ([]refdata.ProductPrice, error)
	ListRates(ctx context.Context) ([]refdata.CommissionRate, error)
	ListAdSpend(ctx context.Context) ([]refdata.AdSpend, error)
}

// RollupObserver counts rollup computations for monitoring.
type RollupObserver interface {
	ObserveRollupRun()
}

type snapshotRepo struct {
	events  sales.Repository
	refdata refdata.Repository
}

// NewSnapshotRepository adapts the sales and reference data repositories
// into the single snapshot view the rollup consumes.
func NewSnapshotRepository(events sales.Repository, ref refdata.Repository) Repository {
	return &snapshotRepo{events: events, refdata: ref}
}

func (r *snapshotRepo) ListEvents(ctx context.Context) ([]sales.Event, error) {
	return r.events.ListEvents(ctx)
}

func (r *snapshotRepo) ListPrices(ctx context.Context) ([]refdata.ProductPrice, error) {
	return r.refdata.ListPrices(ctx)
}

func (r *snapshotRepo) ListRates(ctx context.Context) ([]refdata.CommissionRate, error) {
	return r.refdata.ListRates(ctx)
}

func (r *snapshotRepo) ListAdSpend(ctx context.Context) ([]refdata.AdSpend, error) {
	return r.refdata.ListAdSpend(ctx)
}

// Service coordinates rollup computation with the cache layer.
type Service struct {
	repo     Repository
	cache    *Cache
	observer RollupObserver
}

// NewService wires a Repository with a Cache helper. Observer may be nil.
func NewService(repo Repository, cache *Cache, observer RollupObserver) *Service {
	return &Service{repo: repo, cache: cache, observer: observer}
}

type snapshot struct {
	events []sales.Event
	prices []refdata.ProductPrice
	rates  []refdata.CommissionRate
	spends []refdata.AdSpend
}

func (s *Service) loadSnapshot(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.events, err = s.repo.ListEvents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.prices, err = s.repo.ListPrices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.rates, err = s.repo.ListRates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.spends, err = s.repo.ListAdSpend(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// GetDailySummaries resolves the per-day rollup, cache-aware.
func (s *Service) GetDailySummaries(ctx context.Context) ([]DailySummary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		if s.observer != nil {
			s.observer.ObserveRollupRun()
		}
		return Rollup(snap.events, snap.prices, snap.rates, snap.spends), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		summaries, _ := value.([]DailySummary)
		return summaries, nil
	}

	key, err := s.cache.BuildKey(ctx, keyDaily())
	if err != nil {
		return nil, err
	}
	var summaries []DailySummary
	if err := s.cache.FetchJSON(ctx, key, &summaries, loader); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetProfitTrend resolves the cumulative net profit series, cache-aware.
func (s *Service) GetProfitTrend(ctx context.Context) ([]TrendPoint, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		summaries, err := s.GetDailySummaries(ctx)
		if err != nil {
			return nil, err
		}
		return CumulativeProfit(summaries), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		points, _ := value.([]TrendPoint)
		return points, nil
	}

	key, err := s.cache.BuildKey(ctx, keyTrend())
	if err != nil {
		return nil, err
	}
	var points []TrendPoint
	if err := s.cache.FetchJSON(ctx, key, &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// Warm precomputes and caches the rollup outputs.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.GetDailySummaries(ctx); err != nil {
		return err
	}
	_, err := s.GetProfitTrend(ctx)
	return err
}

// InvalidateCache bumps the cache version after a data mutation.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}
