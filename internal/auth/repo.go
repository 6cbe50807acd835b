package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marginboard/marginboard/internal/shared"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: db}
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, password_hash, nickname, created_at
	          FROM users WHERE username = $1`
	var user User
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Nickname, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new account. A duplicate username maps to
// shared.ErrUsernameTaken.
func (r *PGRepository) CreateUser(ctx context.Context, user User) (*User, error) {
	query := `INSERT INTO users (username, password_hash, nickname, created_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	user.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Nickname, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
