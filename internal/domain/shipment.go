package domain

import (
	"strings"
	"time"
)

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentOpen      ShipmentStatus = "open"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentCompleted ShipmentStatus = "completed"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

func ParseShipmentStatus(s string) (ShipmentStatus, bool) {
	switch ShipmentStatus(s) {
	case ShipmentPending, ShipmentOpen, ShipmentInTransit, ShipmentCompleted, ShipmentCancelled:
		return ShipmentStatus(s), true
	default:
		return "", false
	}
}

type Shipment struct {
	ID               int64          `json:"id"`
	UserID           int64          `json:"user_id"`
	PickupLocation   string         `json:"pickup_location"`
	DeliveryLocation string         `json:"delivery_location"`
	PickupDate       time.Time      `json:"pickup_date"`
	CargoType        string         `json:"cargo_type"`
	Weight           float64        `json:"weight"`
	Status           ShipmentStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type CreateShipmentRequest struct {
	PickupLocation   string     `json:"pickup_location"`
	DeliveryLocation string     `json:"delivery_location"`
	PickupDate       *time.Time `json:"pickup_date"`
	CargoType        string     `json:"cargo_type,omitempty"`
	Weight           *float64   `json:"weight,omitempty"`
}

type ShipmentFilter struct {
	Status *ShipmentStatus
	UserID *int64
}

func (r *CreateShipmentRequest) Normalize() {
	r.PickupLocation = strings.TrimSpace(r.PickupLocation)
	r.DeliveryLocation = strings.TrimSpace(r.DeliveryLocation)
	r.CargoType = strings.TrimSpace(r.CargoType)
	if r.CargoType == "" {
		r.CargoType = "general"
	}
}

func (r *CreateShipmentRequest) Validate() error {
	if r.PickupLocation == "" {
		return NewValidationError("pickup_location", "is required")
	}
	if r.DeliveryLocation == "" {
		return NewValidationError("delivery_location", "is required")
	}
	if r.PickupDate == nil || r.PickupDate.IsZero() {
		return NewValidationError("pickup_date", "is required")
	}
	if r.Weight != nil && *r.Weight < 0 {
		return NewValidationError("weight", "must not be negative")
	}
	return nil
}

// CanCancel reports whether the shipment may still be withdrawn by its owner.
func (s *Shipment) CanCancel() bool {
	return s.Status == ShipmentPending || s.Status == ShipmentOpen
}

// CanComplete reports whether delivery completion is a valid transition.
func (s *Shipment) CanComplete() bool {
	return s.Status == ShipmentInTransit
}
