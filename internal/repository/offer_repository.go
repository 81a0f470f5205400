package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

type OfferRepository interface {
	Create(ctx context.Context, driverID int64, req *domain.CreateOfferRequest) (*domain.Offer, error)
	GetByID(ctx context.Context, id int64) (*domain.Offer, error)
	ListByShipment(ctx context.Context, shipmentID int64) ([]domain.Offer, error)
	Accept(ctx context.Context, offerID int64) (*domain.Offer, int64, error)
	Reject(ctx context.Context, offerID int64) (*domain.Offer, error)
}

type offerRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) OfferRepository {
	return &offerRepository{pool: pool}
}

const offerCols = `id, shipment_id, driver_id, price, notes, status,
estimated_delivery_date, created_at, updated_at`

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(
		&o.ID, &o.ShipmentID, &o.DriverID, &o.Price, &o.Notes, &o.Status,
		&o.EstimatedDeliveryDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) Create(ctx context.Context, driverID int64, req *domain.CreateOfferRequest) (*domain.Offer, error) {
	const q = `
		INSERT INTO offers (shipment_id, driver_id, price, notes, status, estimated_delivery_date)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		RETURNING ` + offerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanOffer(r.pool.QueryRow(ctx, q,
		req.ShipmentID, driverID, *req.Price, req.Notes, req.EstimatedDeliveryDate,
	))
}

func (r *offerRepository) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	const q = `SELECT ` + offerCols + ` FROM offers WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	o, err := scanOffer(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *offerRepository) ListByShipment(ctx context.Context, shipmentID int64) ([]domain.Offer, error) {
	const q = `SELECT ` + offerCols + ` FROM offers WHERE shipment_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(
			&o.ID, &o.ShipmentID, &o.DriverID, &o.Price, &o.Notes, &o.Status,
			&o.EstimatedDeliveryDate, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// Accept performs the whole acceptance as one transaction: the offer goes
// pending->accepted, every sibling pending offer goes ->rejected, and the
// parent shipment goes open->in_transit. Any guard failing rolls the whole
// thing back. Returns the accepted offer and the number of rejected siblings.
func (r *offerRepository) Accept(ctx context.Context, offerID int64) (*domain.Offer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const acceptQ = `
		UPDATE offers SET status = 'accepted', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + offerCols

	offer, err := scanOffer(tx.QueryRow(ctx, acceptQ, offerID))
	if err == pgx.ErrNoRows {
		return nil, 0, domain.ErrConflict
	}
	if err != nil {
		return nil, 0, err
	}

	const rejectSiblingsQ = `
		UPDATE offers SET status = 'rejected', updated_at = now()
		WHERE shipment_id = $1 AND id != $2 AND status = 'pending'`

	rejected, err := tx.Exec(ctx, rejectSiblingsQ, offer.ShipmentID, offer.ID)
	if err != nil {
		return nil, 0, err
	}

	const advanceShipmentQ = `
		UPDATE shipments SET status = 'in_transit', updated_at = now()
		WHERE id = $1 AND status = 'open'`

	advanced, err := tx.Exec(ctx, advanceShipmentQ, offer.ShipmentID)
	if err != nil {
		return nil, 0, err
	}
	if advanced.RowsAffected() == 0 {
		// Shipment no longer open; acceptance must not go through.
		return nil, 0, domain.ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit accept transaction: %w", err)
	}
	return offer, rejected.RowsAffected(), nil
}

func (r *offerRepository) Reject(ctx context.Context, offerID int64) (*domain.Offer, error) {
	const q = `
		UPDATE offers SET status = 'rejected', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + offerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	o, err := scanOffer(r.pool.QueryRow(ctx, q, offerID))
	if err == pgx.ErrNoRows {
		return nil, domain.ErrConflict
	}
	return o, err
}
