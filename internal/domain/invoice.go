package domain

import (
	"strings"
	"time"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	switch InvoiceStatus(s) {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceVoid:
		return InvoiceStatus(s), true
	default:
		return "", false
	}
}

type Invoice struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"booking_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Amount        float64       `json:"amount"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Status        InvoiceStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	PaymentRef    string        `json:"payment_ref,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type CreateInvoiceRequest struct {
	BookingID int64      `json:"booking_id"`
	Amount    float64    `json:"amount"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func (r *CreateInvoiceRequest) Normalize() {
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CreateInvoiceRequest) Validate() error {
	if r.BookingID == 0 {
		return NewValidationError("booking_id", "is required")
	}
	if r.Amount <= 0 {
		return NewValidationError("amount", "must be greater than zero")
	}
	return nil
}
