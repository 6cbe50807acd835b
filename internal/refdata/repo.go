package refdata

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// repo implements Repository backed by PostgreSQL
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new reference data repository
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

// Product price operations

func (r *repo) ListPrices(ctx context.Context) ([]ProductPrice, error) {
	query := `SELECT site, product, unit_price, updated_at FROM product_prices ORDER BY site, product`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []ProductPrice
	for rows.Next() {
		var p ProductPrice
		if err := rows.Scan(&p.Site, &p.Product, &p.UnitPrice, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *repo) UpsertPrice(ctx context.Context, price ProductPrice) error {
	query := `INSERT INTO product_prices (site, product, unit_price, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (site, product)
	          DO UPDATE SET unit_price = EXCLUDED.unit_price, updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, price.Site, price.Product, price.UnitPrice, time.Now().UTC())
	return err
}

func (r *repo) DeletePrice(ctx context.Context, site, product string) error {
	query := `DELETE FROM product_prices WHERE site = $1 AND product = $2`
	_, err := r.db.Exec(ctx, query, site, product)
	return err
}

// Commission rate operations

func (r *repo) ListRates(ctx context.Context) ([]CommissionRate, error) {
	query := `SELECT site, rate, updated_at FROM commission_rates ORDER BY site`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []CommissionRate
	for rows.Next() {
		var c CommissionRate
		if err := rows.Scan(&c.Site, &c.Rate, &c.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, c)
	}
	return rates, rows.Err()
}

func (r *repo) UpsertRate(ctx context.Context, rate CommissionRate) error {
	query := `INSERT INTO commission_rates (site, rate, updated_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (site)
	          DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, rate.Site, rate.Rate, time.Now().UTC())
	return err
}

func (r *repo) DeleteRate(ctx context.Context, site string) error {
	query := `DELETE FROM commission_rates WHERE site = $1`
	_, err := r.db.Exec(ctx, query, site)
	return err
}

// Ad spend operations

func (r *repo) ListAdSpend(ctx context.Context) ([]AdSpend, error) {
	query := `SELECT day, site, amount, updated_at FROM ad_spend ORDER BY day DESC, site`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spends []AdSpend
	for rows.Next() {
		var a AdSpend
		if err := rows.Scan(&a.Day, &a.Site, &a.Amount, &a.UpdatedAt); err != nil {
			return nil, err
		}
		spends = append(spends, a)
	}
	return spends, rows.Err()
}

func (r *repo) UpsertAdSpend(ctx context.Context, spend AdSpend) error {
	query := `INSERT INTO ad_spend (day, site, amount, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (day, site)
	          DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, spend.Day, spend.Site, spend.Amount, time.Now().UTC())
	return err
}

func (r *repo) DeleteAdSpend(ctx context.Context, day time.Time, site string) error {
	query := `DELETE FROM ad_spend WHERE day = $1 AND site = $2`
	_, err := r.db.Exec(ctx, query, day, site)
	return err
}
