package service

import (
	"context"
	"fmt"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/pkg/events"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type OfferService interface {
	Create(ctx context.Context, driverID int64, req *domain.CreateOfferRequest) (*domain.Offer, error)
	ListForShipment(ctx context.Context, shipmentID int64) ([]domain.Offer, error)
	Accept(ctx context.Context, callerID, offerID int64) (*domain.Offer, error)
	Reject(ctx context.Context, callerID, offerID int64) (*domain.Offer, error)
}

type offerService struct {
	offerRepo    repository.OfferRepository
	shipmentRepo repository.ShipmentRepository
	eventBus     events.Publisher
}

func NewOfferService(
	offerRepo repository.OfferRepository,
	shipmentRepo repository.ShipmentRepository,
	eventBus events.Publisher,
) OfferService {
	return &offerService{
		offerRepo:    offerRepo,
		shipmentRepo: shipmentRepo,
		eventBus:     eventBus,
	}
}

func (s *offerService) Create(ctx context.Context, driverID int64, req *domain.CreateOfferRequest) (*domain.Offer, error) {
	if driverID == 0 {
		return nil, domain.NewValidationError("driver_id", "is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	shipment, err := s.shipmentRepo.GetByID(ctx, req.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	if shipment.Status != domain.ShipmentOpen {
		return nil, domain.ErrConflict
	}

	offer, err := s.offerRepo.Create(ctx, driverID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	event := events.OfferSubmittedEvent{
		OfferID:    offer.ID,
		ShipmentID: offer.ShipmentID,
		DriverID:   offer.DriverID,
		Price:      offer.Price,
		CreatedAt:  offer.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.OfferSubmitted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish offer submitted event", "error", err, "offer_id", offer.ID)
	}

	return offer, nil
}

func (s *offerService) ListForShipment(ctx context.Context, shipmentID int64) ([]domain.Offer, error) {
	if shipmentID == 0 {
		return nil, domain.NewValidationError("shipmentId", "is required")
	}
	offers, err := s.offerRepo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// Accept resolves the winning offer. Only the shipment owner may accept,
// and the offer/shipment state guards are re-checked inside the repository
// transaction so concurrent accepts cannot both win.
func (s *offerService) Accept(ctx context.Context, callerID, offerID int64) (*domain.Offer, error) {
	offer, shipment, err := s.offerWithShipment(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if shipment.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	if offer.IsTerminal() || shipment.Status != domain.ShipmentOpen {
		return nil, domain.ErrConflict
	}

	accepted, rejectedSiblings, err := s.offerRepo.Accept(ctx, offerID)
	if err != nil {
		return nil, err
	}

	event := events.OfferAcceptedEvent{
		OfferID:          accepted.ID,
		ShipmentID:       accepted.ShipmentID,
		DriverID:         accepted.DriverID,
		RejectedSiblings: rejectedSiblings,
		AcceptedAt:       accepted.UpdatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.OfferAccepted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish offer accepted event", "error", err, "offer_id", accepted.ID)
	}

	return accepted, nil
}

func (s *offerService) Reject(ctx context.Context, callerID, offerID int64) (*domain.Offer, error) {
	offer, shipment, err := s.offerWithShipment(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if shipment.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	if offer.IsTerminal() {
		return nil, domain.ErrConflict
	}

	rejected, err := s.offerRepo.Reject(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.OfferRejected, map[string]any{"offer_id": offerID}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish offer rejected event", "error", err, "offer_id", offerID)
	}

	return rejected, nil
}

func (s *offerService) offerWithShipment(ctx context.Context, offerID int64) (*domain.Offer, *domain.Shipment, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil {
		return nil, nil, domain.ErrNotFound
	}

	shipment, err := s.shipmentRepo.GetByID(ctx, offer.ShipmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	if shipment == nil {
		return nil, nil, domain.ErrNotFound
	}

	return offer, shipment, nil
}
