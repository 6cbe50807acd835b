package sales

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

// NewService creates a new sale event service. The invalidator and warm
// queue may be nil when no derived caches exist (tests).
func NewService(repo Repository, cache CacheInvalidator, warm RollupWarmQueue) Service {
	return &service{repo: repo, cache: cache, warm: warm}
}

func (s *service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *service) GetEvent(ctx context.Context, id int64) (Event, error) {
	if id <= 0 {
		return Event{}, errors.New("invalid sale event ID")
	}
	return s.repo.GetEvent(ctx, id)
}

func (s *service) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	created, err := s.repo.CreateEvent(ctx, normalizeEvent(event))
	if err != nil {
		return Event{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *service) UpdateEvent(ctx context.Context, id int64, event Event) error {
	if id <= 0 {
		return errors.New("invalid sale event ID")
	}
	if err := validateEvent(event); err != nil {
		return err
	}
	if err := s.repo.UpdateEvent(ctx, id, normalizeEvent(event)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) DeleteEvent(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid sale event ID")
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
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

func validateEvent(event Event) error {
	if strings.TrimSpace(event.Site) == "" {
		return errors.New("site is required")
	}
	if strings.TrimSpace(event.Product) == "" {
		return errors.New("product is required")
	}
	if event.Day.IsZero() {
		return errors.New("day is required")
	}
	if event.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

func normalizeEvent(event Event) Event {
	event.Site = strings.TrimSpace(event.Site)
	event.Product = strings.TrimSpace(event.Product)
	event.Day = event.Day.UTC().Truncate(24 * time.Hour)
	return event
}
