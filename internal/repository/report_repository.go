package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// MarginTotals are the raw sums the gross margin report is derived from.
// Ratio arithmetic stays in the service layer.
type MarginTotals struct {
	BookingCount     int64
	TotalRevenue     float64
	SubcontractSpend float64
}

type ReportRepository interface {
	MarginTotals(ctx context.Context, rng domain.ReportRange) (*MarginTotals, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	RevenueByMonth(ctx context.Context, limit int) ([]domain.MonthlyRevenue, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) MarginTotals(ctx context.Context, rng domain.ReportRange) (*MarginTotals, error) {
	// Open-ended bounds fall back to sentinels rather than branching the query.
	from := time.Time{}
	if rng.From != nil {
		from = *rng.From
	}
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if rng.To != nil {
		to = *rng.To
	}

	const q = `
		SELECT
			COUNT(*),
			COALESCE(SUM(price), 0),
			COALESCE(SUM(COALESCE(subcontract_cost, 0)), 0)
		FROM bookings
		WHERE status = 'delivered'
		  AND pickup_date IS NOT NULL
		  AND pickup_date >= $1
		  AND pickup_date <= $2`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t MarginTotals
	err := r.pool.QueryRow(ctx, q, from, to).Scan(&t.BookingCount, &t.TotalRevenue, &t.SubcontractSpend)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *reportRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT status, COUNT(*) FROM bookings GROUP BY status`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *reportRepository) RevenueByMonth(ctx context.Context, limit int) ([]domain.MonthlyRevenue, error) {
	if limit <= 0 || limit > 60 {
		limit = 12
	}

	const q = `
		SELECT
			date_trunc('month', pickup_date) AS month,
			COUNT(*),
			COALESCE(SUM(price), 0),
			COALESCE(SUM(COALESCE(subcontract_cost, 0)), 0)
		FROM bookings
		WHERE status = 'delivered' AND pickup_date IS NOT NULL
		GROUP BY month
		ORDER BY month DESC
		LIMIT $1`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []domain.MonthlyRevenue
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.BookingCount, &m.TotalRevenue, &m.SubcontractSpend); err != nil {
			return nil, err
		}
		m.GrossMargin = m.TotalRevenue - m.SubcontractSpend
		months = append(months, m)
	}
	return months, rows.Err()
}
