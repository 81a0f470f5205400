package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

type InvoiceRepository interface {
	Create(ctx context.Context, req *domain.CreateInvoiceRequest, invoiceNumber string) (*domain.Invoice, error)
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error)
	List(ctx context.Context, status *domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error)
	SetPaymentRef(ctx context.Context, id int64, ref string) error
}

type invoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepository{pool: pool}
}

const invoiceCols = `id, booking_id, invoice_number, amount, due_date, status, notes,
payment_ref, created_at, updated_at`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var in domain.Invoice
	err := row.Scan(
		&in.ID, &in.BookingID, &in.InvoiceNumber, &in.Amount, &in.DueDate,
		&in.Status, &in.Notes, &in.PaymentRef, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *invoiceRepository) Create(ctx context.Context, req *domain.CreateInvoiceRequest, invoiceNumber string) (*domain.Invoice, error) {
	const q = `
		INSERT INTO invoices (booking_id, invoice_number, amount, due_date, status, notes)
		VALUES ($1, $2, $3, $4, 'draft', $5)
		RETURNING ` + invoiceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	in, err := scanInvoice(r.pool.QueryRow(ctx, q,
		req.BookingID, invoiceNumber, req.Amount, req.DueDate, req.Notes,
	))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return in, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	const q = `SELECT ` + invoiceCols + ` FROM invoices WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	in, err := scanInvoice(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return in, err
}

func (r *invoiceRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	const q = `SELECT ` + invoiceCols + ` FROM invoices WHERE booking_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func (r *invoiceRepository) List(ctx context.Context, status *domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + invoiceCols + ` FROM invoices`
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

	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	for rows.Next() {
		var in domain.Invoice
		if err := rows.Scan(
			&in.ID, &in.BookingID, &in.InvoiceNumber, &in.Amount, &in.DueDate,
			&in.Status, &in.Notes, &in.PaymentRef, &in.CreatedAt, &in.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, in)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error) {
	const q = `
		UPDATE invoices SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + invoiceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	in, err := scanInvoice(r.pool.QueryRow(ctx, q, id, status))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return in, err
}

func (r *invoiceRepository) SetPaymentRef(ctx context.Context, id int64, ref string) error {
	const q = `UPDATE invoices SET payment_ref = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, ref)
	return err
}
