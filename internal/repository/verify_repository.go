package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// VerifyRepository manages the email verification token carried on the
// user row. Tokens are single-use: consuming one activates the account
// and clears the token columns in the same statement.
type VerifyRepository interface {
	SetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (*domain.User, error)
}

type verifyRepository struct {
	pool *pgxpool.Pool
}

func NewVerifyRepository(pool *pgxpool.Pool) VerifyRepository {
	return &verifyRepository{pool: pool}
}

func (r *verifyRepository) SetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET verify_token = $2, verify_token_expires = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, token, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *verifyRepository) Consume(ctx context.Context, token string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET status = 'active', verify_token = NULL, verify_token_expires = NULL, updated_at = now()
		WHERE verify_token = $1 AND verify_token_expires > now()
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, token))
	if err == nil {
		return u, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// No row matched: distinguish an expired token from an unknown or
	// already-consumed one.
	const check = `SELECT 1 FROM users WHERE verify_token = $1`
	var one int
	switch err := r.pool.QueryRow(ctx, check, token).Scan(&one); err {
	case nil:
		return nil, domain.ErrExpiredToken
	case pgx.ErrNoRows:
		return nil, domain.ErrInvalidToken
	default:
		return nil, err
	}
}
