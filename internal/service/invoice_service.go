package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/payments"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/pkg/events"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type InvoiceService interface {
	Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.Invoice, error)
	Get(ctx context.Context, id int64) (*domain.Invoice, error)
	List(ctx context.Context, status *domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, error)
	ListForBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	bookingRepo repository.BookingRepository
	stripe      *payments.Client
	eventBus    events.Publisher
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	bookingRepo repository.BookingRepository,
	stripe *payments.Client,
	eventBus events.Publisher,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		bookingRepo: bookingRepo,
		stripe:      stripe,
		eventBus:    eventBus,
	}
}

func (s *invoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}

	invoiceNumber := newInvoiceNumber()
	invoice, err := s.invoiceRepo.Create(ctx, req, invoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	// Payment intent creation is best effort; the invoice stands on its
	// own and the ref can be reconciled later.
	if s.stripe.Enabled() {
		ref, err := s.stripe.CreateIntent(invoice.Amount, invoice.InvoiceNumber)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create payment intent", "error", err, "invoice_id", invoice.ID)
		} else if err := s.invoiceRepo.SetPaymentRef(ctx, invoice.ID, ref); err != nil {
			logger.ErrorContext(ctx, "Failed to store payment ref", "error", err, "invoice_id", invoice.ID)
		} else {
			invoice.PaymentRef = ref
		}
	}

	event := events.InvoiceIssuedEvent{
		InvoiceID:     invoice.ID,
		BookingID:     invoice.BookingID,
		InvoiceNumber: invoice.InvoiceNumber,
		Amount:        invoice.Amount,
	}
	if err := s.eventBus.Publish(ctx, events.InvoiceIssued, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish invoice issued event", "error", err, "invoice_id", invoice.ID)
	}

	return invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, status *domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (s *invoiceService) ListForBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if _, ok := domain.ParseInvoiceStatus(string(status)); !ok {
		return nil, domain.NewValidationError("status", "unknown invoice status")
	}

	invoice, err := s.invoiceRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func newInvoiceNumber() string {
	return "XD-" + strings.ToUpper(uuid.NewString()[:8])
}
