package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

type ShipmentRepository interface {
	Create(ctx context.Context, userID int64, req *domain.CreateShipmentRequest) (*domain.Shipment, error)
	GetByID(ctx context.Context, id int64) (*domain.Shipment, error)
	List(ctx context.Context, filter domain.ShipmentFilter, limit, offset int) ([]domain.Shipment, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ShipmentStatus) (bool, error)
}

type shipmentRepository struct {
	pool *pgxpool.Pool
}

func NewShipmentRepository(pool *pgxpool.Pool) ShipmentRepository {
	return &shipmentRepository{pool: pool}
}

const shipmentCols = `id, user_id, pickup_location, delivery_location, pickup_date,
cargo_type, weight, status, created_at, updated_at`

func scanShipment(row pgx.Row) (*domain.Shipment, error) {
	var s domain.Shipment
	err := row.Scan(
		&s.ID, &s.UserID, &s.PickupLocation, &s.DeliveryLocation, &s.PickupDate,
		&s.CargoType, &s.Weight, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shipmentRepository) Create(ctx context.Context, userID int64, req *domain.CreateShipmentRequest) (*domain.Shipment, error) {
	// New shipments are immediately open for offers.
	const q = `
		INSERT INTO shipments (user_id, pickup_location, delivery_location, pickup_date, cargo_type, weight, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING ` + shipmentCols

	weight := 0.0
	if req.Weight != nil {
		weight = *req.Weight
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanShipment(r.pool.QueryRow(ctx, q,
		userID, req.PickupLocation, req.DeliveryLocation, req.PickupDate, req.CargoType, weight,
	))
}

func (r *shipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Shipment, error) {
	const q = `SELECT ` + shipmentCols + ` FROM shipments WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanShipment(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *shipmentRepository) List(ctx context.Context, filter domain.ShipmentFilter, limit, offset int) ([]domain.Shipment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + shipmentCols + ` FROM shipments`
	var args []any
	switch {
	case filter.Status != nil && filter.UserID != nil:
		q += ` WHERE status = $1 AND user_id = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = []any{*filter.Status, *filter.UserID, limit, offset}
	case filter.Status != nil:
		q += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = []any{*filter.Status, limit, offset}
	case filter.UserID != nil:
		q += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = []any{*filter.UserID, limit, offset}
	default:
		q += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []domain.Shipment
	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PickupLocation, &s.DeliveryLocation, &s.PickupDate,
			&s.CargoType, &s.Weight, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

// UpdateStatus applies the from->to transition and reports whether the
// shipment was in the expected source state.
func (r *shipmentRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.ShipmentStatus) (bool, error) {
	const q = `UPDATE shipments SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
