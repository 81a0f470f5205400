package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingInTransit BookingStatus = "in_transit"
	BookingDelivered BookingStatus = "delivered"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingScheduled, BookingInTransit, BookingDelivered, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Booking is the operational record of a confirmed job. It feeds the
// financial reports and lives alongside the shipment/offer board.
type Booking struct {
	ID              int64         `json:"id"`
	LoadID          string        `json:"load_id"`
	FromAddress     string        `json:"from_address"`
	ToAddress       string        `json:"to_address"`
	VehicleType     string        `json:"vehicle_type,omitempty"`
	PickupDate      *time.Time    `json:"pickup_date,omitempty"`
	DeliveryDate    *time.Time    `json:"delivery_date,omitempty"`
	Price           float64       `json:"price"`
	SubcontractCost *float64      `json:"subcontract_cost,omitempty"`
	Status          BookingStatus `json:"status"`
	CompletedBy     string        `json:"completed_by,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type CreateBookingRequest struct {
	LoadID          string     `json:"load_id"`
	FromAddress     string     `json:"from_address"`
	ToAddress       string     `json:"to_address"`
	VehicleType     string     `json:"vehicle_type,omitempty"`
	PickupDate      *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	Price           float64    `json:"price"`
	SubcontractCost *float64   `json:"subcontract_cost,omitempty"`
	CompletedBy     string     `json:"completed_by,omitempty"`
}

type BookingPatch struct {
	FromAddress     *string        `json:"from_address,omitempty"`
	ToAddress       *string        `json:"to_address,omitempty"`
	VehicleType     *string        `json:"vehicle_type,omitempty"`
	PickupDate      *time.Time     `json:"pickup_date,omitempty"`
	DeliveryDate    *time.Time     `json:"delivery_date,omitempty"`
	Price           *float64       `json:"price,omitempty"`
	SubcontractCost *float64       `json:"subcontract_cost,omitempty"`
	Status          *BookingStatus `json:"status,omitempty"`
	CompletedBy     *string        `json:"completed_by,omitempty"`
}

func (r *CreateBookingRequest) Normalize() {
	r.LoadID = strings.TrimSpace(r.LoadID)
	r.FromAddress = strings.TrimSpace(r.FromAddress)
	r.ToAddress = strings.TrimSpace(r.ToAddress)
	r.VehicleType = strings.TrimSpace(r.VehicleType)
}

func (r *CreateBookingRequest) Validate() error {
	if r.LoadID == "" {
		return NewValidationError("load_id", "is required")
	}
	if r.FromAddress == "" {
		return NewValidationError("from_address", "is required")
	}
	if r.ToAddress == "" {
		return NewValidationError("to_address", "is required")
	}
	if r.Price < 0 {
		return NewValidationError("price", "must not be negative")
	}
	if r.SubcontractCost != nil && *r.SubcontractCost < 0 {
		return NewValidationError("subcontract_cost", "must not be negative")
	}
	return nil
}

func (p *BookingPatch) Validate() error {
	if p.Status != nil {
		if _, ok := ParseBookingStatus(string(*p.Status)); !ok {
			return NewValidationError("status", "unknown booking status")
		}
	}
	if p.Price != nil && *p.Price < 0 {
		return NewValidationError("price", "must not be negative")
	}
	return nil
}
