package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used when no NATS URL is configured (tests, local dev).
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event dropped (no event bus configured)", "subject", subject)
	return nil
}

func (NoopPublisher) Close() error { return nil }

// Subjects
const (
	UserRegistered = "user.registered"
	UserVerified   = "user.verified"

	ShipmentCreated   = "shipment.created"
	ShipmentCancelled = "shipment.cancelled"
	ShipmentCompleted = "shipment.completed"

	OfferSubmitted = "offer.submitted"
	OfferAccepted  = "offer.accepted"
	OfferRejected  = "offer.rejected"

	BookingCreated = "booking.created"
	InvoiceIssued  = "invoice.issued"
)

// Event payloads
type UserRegisteredEvent struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	AccountType string    `json:"account_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type ShipmentCreatedEvent struct {
	ShipmentID       int64     `json:"shipment_id"`
	UserID           int64     `json:"user_id"`
	PickupLocation   string    `json:"pickup_location"`
	DeliveryLocation string    `json:"delivery_location"`
	PickupDate       time.Time `json:"pickup_date"`
	CargoType        string    `json:"cargo_type"`
	CreatedAt        time.Time `json:"created_at"`
}

type OfferSubmittedEvent struct {
	OfferID    int64     `json:"offer_id"`
	ShipmentID int64     `json:"shipment_id"`
	DriverID   int64     `json:"driver_id"`
	Price      float64   `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}

type OfferAcceptedEvent struct {
	OfferID          int64     `json:"offer_id"`
	ShipmentID       int64     `json:"shipment_id"`
	DriverID         int64     `json:"driver_id"`
	RejectedSiblings int64     `json:"rejected_siblings"`
	AcceptedAt       time.Time `json:"accepted_at"`
}

type BookingCreatedEvent struct {
	BookingID   int64      `json:"booking_id"`
	LoadID      string     `json:"load_id"`
	FromAddress string     `json:"from_address"`
	ToAddress   string     `json:"to_address"`
	PickupDate  *time.Time `json:"pickup_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type InvoiceIssuedEvent struct {
	InvoiceID     int64   `json:"invoice_id"`
	BookingID     int64   `json:"booking_id"`
	InvoiceNumber string  `json:"invoice_number"`
	Amount        float64 `json:"amount"`
}
