package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, load_id, from_address, to_address, vehicle_type,
pickup_date, delivery_date, price, subcontract_cost, status, completed_by,
created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.LoadID, &b.FromAddress, &b.ToAddress, &b.VehicleType,
		&b.PickupDate, &b.DeliveryDate, &b.Price, &b.SubcontractCost,
		&b.Status, &b.CompletedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	const q = `
		INSERT INTO bookings (load_id, from_address, to_address, vehicle_type,
			pickup_date, delivery_date, price, subcontract_cost, status, completed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'scheduled', $9)
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q,
		req.LoadID, req.FromAddress, req.ToAddress, req.VehicleType,
		req.PickupDate, req.DeliveryDate, req.Price, req.SubcontractCost, req.CompletedBy,
	))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) List(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + bookingCols + ` FROM bookings`
	var args []any
	if status != nil {
		q += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = []any{*status, limit, offset}
	} else {
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

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.LoadID, &b.FromAddress, &b.ToAddress, &b.VehicleType,
			&b.PickupDate, &b.DeliveryDate, &b.Price, &b.SubcontractCost,
			&b.Status, &b.CompletedBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET
			from_address     = COALESCE($2, from_address),
			to_address       = COALESCE($3, to_address),
			vehicle_type     = COALESCE($4, vehicle_type),
			pickup_date      = COALESCE($5, pickup_date),
			delivery_date    = COALESCE($6, delivery_date),
			price            = COALESCE($7, price),
			subcontract_cost = COALESCE($8, subcontract_cost),
			status           = COALESCE($9, status),
			completed_by     = COALESCE($10, completed_by),
			updated_at       = now()
		WHERE id = $1
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q,
		id,
		patch.FromAddress, patch.ToAddress, patch.VehicleType,
		patch.PickupDate, patch.DeliveryDate, patch.Price,
		patch.SubcontractCost, patch.Status, patch.CompletedBy,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
