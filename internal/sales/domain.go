package sales

import (
	"context"
	"time"
)

// Event represents one recorded sale: a quantity of a product sold on a
// site on a calendar day. Quantity and the (site, product) target stay
// mutable after creation.
type Event struct {
	ID        int64     `json:"id"`
	Day       time.Time `json:"day"`
	Site      string    `json:"site"`
	Product   string    `json:"product"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository interface for sale event persistence
type Repository interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, id int64, event Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

// Service interface for sale event operations
type Service interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, id int64, event Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

// CacheInvalidator discards derived rollup data after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// RollupWarmQueue schedules a background rollup recomputation.
type RollupWarmQueue interface {
	EnqueueRollupWarm(ctx context.Context, reason string) error
}
