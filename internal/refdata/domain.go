package refdata

import (
	"context"
	"time"
)

// ProductPrice fixes the unit price for a product sold on a site.
type ProductPrice struct {
	Site      string    `json:"site"`
	Product   string    `json:"product"`
	UnitPrice int64     `json:"unit_price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommissionRate is the percentage a site retains on every sale, one rate
// per site across all products.
type CommissionRate struct {
	Site      string    `json:"site"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdSpend is the total advertising expenditure for a site on a calendar
// day, independent of how many distinct products were sold.
type AdSpend struct {
	Day       time.Time `json:"day"`
	Site      string    `json:"site"`
	Amount    int64     `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository interface for reference data operations
type Repository interface {
	// Product price operations
	ListPrices(ctx context.Context) ([]ProductPrice, error)
	UpsertPrice(ctx context.Context, price ProductPrice) error
	DeletePrice(ctx context.Context, site, product string) error

	// Commission rate operations
	ListRates(ctx context.Context) ([]CommissionRate, error)
	UpsertRate(ctx context.Context, rate CommissionRate) error
	DeleteRate(ctx context.Context, site string) error

	// Ad spend operations
	ListAdSpend(ctx context.Context) ([]AdSpend, error)
	UpsertAdSpend(ctx context.Context, spend AdSpend) error
	DeleteAdSpend(ctx context.Context, day time.Time, site string) error
}

// Service interface for reference data operations
type Service interface {
	ListPrices(ctx context.Context) ([]ProductPrice, error)
	UpsertPrice(ctx context.Context, price ProductPrice) error
	DeletePrice(ctx context.Context, site, product string) error

	ListRates(ctx context.Context) ([]CommissionRate, error)
	UpsertRate(ctx context.Context, rate CommissionRate) error
	DeleteRate(ctx context.Context, site string) error

	ListAdSpend(ctx context.Context) ([]AdSpend, error)
	UpsertAdSpend(ctx context.Context, spend AdSpend) error
	DeleteAdSpend(ctx context.Context, day time.Time, site string) error
}

// CacheInvalidator discards derived rollup data after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// RollupWarmQueue schedules a background rollup recomputation.
type RollupWarmQueue interface {
	EnqueueRollupWarm(ctx context.Context, reason string) error
}
