package refdata

import (
	"context"
	"errors"
	"strings"
	"time"
)

// service implements Service
type service struct {
	repo  Repository
	cache CacheInvalidator
	warm  RollupWarmQueue
}

// NewService creates a new reference data service
func NewService(repo Repository, cache CacheInvalidator, warm RollupWarmQueue) Service {
	return &service{repo: repo, cache: cache, warm: warm}
}

func (s *service) ListPrices(ctx context.Context) ([]ProductPrice, error) {
	return s.repo.ListPrices(ctx)
}

func (s *service) UpsertPrice(ctx context.Context, price ProductPrice) error {
	price.Site = strings.TrimSpace(price.Site)
	price.Product = strings.TrimSpace(price.Product)
	if price.Site == "" {
		return errors.New("site is required")
	}
	if price.Product == "" {
		return errors.New("product is required")
	}
	if price.UnitPrice < 0 {
		return errors.New("unit price must not be negative")
	}
	if err := s.repo.UpsertPrice(ctx, price); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) DeletePrice(ctx context.Context, site, product string) error {
	if strings.TrimSpace(site) == "" || strings.TrimSpace(product) == "" {
		return errors.New("site and product are required")
	}
	if err := s.repo.DeletePrice(ctx, site, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) ListRates(ctx context.Context) ([]CommissionRate, error) {
	return s.repo.ListRates(ctx)
}

func (s *service) UpsertRate(ctx context.Context, rate CommissionRate) error {
	rate.Site = strings.TrimSpace(rate.Site)
	if rate.Site == "" {
		return errors.New("site is required")
	}
	if rate.Rate < 0 || rate.Rate > 100 {
		return errors.New("rate must be between 0 and 100")
	}
	if err := s.repo.UpsertRate(ctx, rate); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) DeleteRate(ctx context.Context, site string) error {
	if strings.TrimSpace(site) == "" {
		return errors.New("site is required")
	}
	if err := s.repo.DeleteRate(ctx, site); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) ListAdSpend(ctx context.Context) ([]AdSpend, error) {
	return s.repo.ListAdSpend(ctx)
}

func (s *service) UpsertAdSpend(ctx context.Context, spend AdSpend) error {
	spend.Site = strings.TrimSpace(spend.Site)
	if spend.Site == "" {
		return errors.New("site is required")
	}
	if spend.Day.IsZero() {
		return errors.New("day is required")
	}
	if spend.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	spend.Day = spend.Day.UTC().Truncate(24 * time.Hour)
	if err := s.repo.UpsertAdSpend(ctx, spend); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) DeleteAdSpend(ctx context.Context, day time.Time, site string) error {
	if strings.TrimSpace(site) == "" || day.IsZero() {
		return errors.New("day and site are required")
	}
	if err := s.repo.DeleteAdSpend(ctx, day.UTC().Truncate(24*time.Hour), site); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate bumps the cache version and queues a warmup so the next
// dashboard load does not pay the recompute. Both are best effort.
func (s *service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	if s.warm != nil {
		_ = s.warm.EnqueueRollupWarm(ctx, "mutation")
	}
}
