package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, req *domain.CreateFeedbackRequest) (*domain.Feedback, error)
	List(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

const feedbackCols = `id, user_id, booking_id, rating, comment, created_at`

func (r *feedbackRepository) Create(ctx context.Context, req *domain.CreateFeedbackRequest) (*domain.Feedback, error) {
	const q = `
		INSERT INTO feedback (user_id, booking_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + feedbackCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var f domain.Feedback
	err := r.pool.QueryRow(ctx, q, req.UserID, req.BookingID, req.Rating, req.Comment).Scan(
		&f.ID, &f.UserID, &f.BookingID, &f.Rating, &f.Comment, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *feedbackRepository) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + feedbackCols + ` FROM feedback ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.BookingID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
