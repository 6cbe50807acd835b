package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marginboard/marginboard/internal/shared"
)

// repo implements Repository backed by PostgreSQL
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new sale event repository
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) ListEvents(ctx context.Context) ([]Event, error) {
	query := `SELECT id, day, site, product, quantity, created_at, updated_at
	          FROM sale_events ORDER BY day DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Day, &e.Site, &e.Product, &e.Quantity, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repo) GetEvent(ctx context.Context, id int64) (Event, error) {
	query := `SELECT id, day, site, product, quantity, created_at, updated_at
	          FROM sale_events WHERE id = $1`
	var e Event
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.Day, &e.Site, &e.Product, &e.Quantity, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, shared.ErrNotFound
	}
	return e, err
}

func (r *repo) CreateEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO sale_events (day, site, product, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, event.Day, event.Site, event.Product, event.Quantity, now, now).Scan(&event.ID)
	if err != nil {
		return Event{}, err
	}
	event.CreatedAt = now
	event.UpdatedAt = now
	return event, nil
}

func (r *repo) UpdateEvent(ctx context.Context, id int64, event Event) error {
	query := `UPDATE sale_events SET day = $1, site = $2, product = $3, quantity = $4, updated_at = $5 WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, event.Day, event.Site, event.Product, event.Quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteEvent(ctx context.Context, id int64) error {
	query := `DELETE FROM sale_events WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
