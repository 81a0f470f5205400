package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/payments"
	"github.com/xdrive/xdrive-logistics/internal/service"
	"github.com/xdrive/xdrive-logistics/pkg/events"
)

type mockBookingRepo struct {
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	booking := &domain.Booking{
		ID:          m.nextID,
		LoadID:      req.LoadID,
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Price:       req.Price,
		Status:      domain.BookingScheduled,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.nextID++
	m.bookings[booking.ID] = booking
	return booking, nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	booking, exists := m.bookings[id]
	if !exists {
		return nil, nil
	}
	return booking, nil
}

func (m *mockBookingRepo) List(_ context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	var result []domain.Booking
	for _, b := range m.bookings {
		if status != nil && b.Status != *status {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (m *mockBookingRepo) Update(_ context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	booking, exists := m.bookings[id]
	if !exists {
		return nil, nil
	}
	if patch.Price != nil {
		booking.Price = *patch.Price
	}
	if patch.Status != nil {
		booking.Status = *patch.Status
	}
	return booking, nil
}

func (m *mockBookingRepo) Delete(_ context.Context, id int64) error {
	if _, exists := m.bookings[id]; !exists {
		return domain.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

type mockInvoiceRepo struct {
	nextID   int64
	invoices map[int64]*domain.Invoice
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{nextID: 1, invoices: make(map[int64]*domain.Invoice)}
}

func (m *mockInvoiceRepo) Create(_ context.Context, req *domain.CreateInvoiceRequest, invoiceNumber string) (*domain.Invoice, error) {
	invoice := &domain.Invoice{
		ID:            m.nextID,
		BookingID:     req.BookingID,
		InvoiceNumber: invoiceNumber,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		Status:        domain.InvoiceDraft,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.nextID++
	m.invoices[invoice.ID] = invoice
	return invoice, nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	invoice, exists := m.invoices[id]
	if !exists {
		return nil, nil
	}
	return invoice, nil
}

func (m *mockInvoiceRepo) ListByBooking(_ context.Context, bookingID int64) ([]domain.Invoice, error) {
	var result []domain.Invoice
	for _, inv := range m.invoices {
		if inv.BookingID == bookingID {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (m *mockInvoiceRepo) List(_ context.Context, status *domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, error) {
	var result []domain.Invoice
	for _, inv := range m.invoices {
		if status != nil && inv.Status != *status {
			continue
		}
		result = append(result, *inv)
	}
	return result, nil
}

func (m *mockInvoiceRepo) UpdateStatus(_ context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error) {
	invoice, exists := m.invoices[id]
	if !exists {
		return nil, nil
	}
	invoice.Status = status
	return invoice, nil
}

func (m *mockInvoiceRepo) SetPaymentRef(_ context.Context, id int64, ref string) error {
	invoice, exists := m.invoices[id]
	if !exists {
		return domain.ErrNotFound
	}
	invoice.PaymentRef = ref
	return nil
}

func newInvoiceService(bookingRepo *mockBookingRepo, invoiceRepo *mockInvoiceRepo) service.InvoiceService {
	// Empty secret key leaves Stripe disabled; invoices still issue.
	stripe := payments.NewClient("", "gbp")
	return service.NewInvoiceService(invoiceRepo, bookingRepo, stripe, events.NoopPublisher{})
}

func TestInvoiceCreate_AssignsNumberAndDraftStatus(t *testing.T) {
	bookingRepo := newMockBookingRepo()
	invoiceRepo := newMockInvoiceRepo()
	svc := newInvoiceService(bookingRepo, invoiceRepo)

	booking, _ := bookingRepo.Create(context.Background(), &domain.CreateBookingRequest{
		LoadID: "L-100", FromAddress: "A", ToAddress: "B", Price: 250,
	})

	invoice, err := svc.Create(context.Background(), &domain.CreateInvoiceRequest{
		BookingID: booking.ID,
		Amount:    250,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(invoice.InvoiceNumber, "XD-") || len(invoice.InvoiceNumber) != 11 {
		t.Fatalf("Unexpected invoice number %q", invoice.InvoiceNumber)
	}
	if invoice.Status != domain.InvoiceDraft {
		t.Fatalf("Expected draft invoice, got %s", invoice.Status)
	}
	if invoice.PaymentRef != "" {
		t.Fatalf("Expected no payment ref with payments disabled, got %q", invoice.PaymentRef)
	}
}

func TestInvoiceCreate_UnknownBooking(t *testing.T) {
	svc := newInvoiceService(newMockBookingRepo(), newMockInvoiceRepo())

	_, err := svc.Create(context.Background(), &domain.CreateInvoiceRequest{
		BookingID: 42,
		Amount:    100,
	})
	if err != domain.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestInvoiceUpdateStatus_UnknownInvoice(t *testing.T) {
	svc := newInvoiceService(newMockBookingRepo(), newMockInvoiceRepo())

	_, err := svc.UpdateStatus(context.Background(), 42, domain.InvoicePaid)
	if err != domain.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
