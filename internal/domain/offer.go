package domain

import (
	"strings"
	"time"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

type Offer struct {
	ID                    int64       `json:"id"`
	ShipmentID            int64       `json:"shipment_id"`
	DriverID              int64       `json:"driver_id"`
	Price                 float64     `json:"price"`
	Notes                 string      `json:"notes,omitempty"`
	Status                OfferStatus `json:"status"`
	EstimatedDeliveryDate *time.Time  `json:"estimated_delivery_date,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

type CreateOfferRequest struct {
	ShipmentID            int64      `json:"shipment_id"`
	Price                 *float64   `json:"price"`
	Notes                 string     `json:"notes,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
}

func (r *CreateOfferRequest) Normalize() {
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CreateOfferRequest) Validate() error {
	if r.ShipmentID == 0 {
		return NewValidationError("shipment_id", "is required")
	}
	if r.Price == nil {
		return NewValidationError("price", "is required")
	}
	if *r.Price <= 0 {
		return NewValidationError("price", "must be greater than zero")
	}
	return nil
}

// IsTerminal reports whether the offer has reached a final state.
// Accepted and rejected offers never transition again.
func (o *Offer) IsTerminal() bool {
	return o.Status == OfferAccepted || o.Status == OfferRejected
}
