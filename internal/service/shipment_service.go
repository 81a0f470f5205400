package service

import (
	"context"
	"fmt"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/pkg/events"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type ShipmentService interface {
	Create(ctx context.Context, ownerID int64, req *domain.CreateShipmentRequest) (*domain.Shipment, error)
	Get(ctx context.Context, id int64) (*domain.Shipment, error)
	List(ctx context.Context, filter domain.ShipmentFilter, limit, offset int) ([]domain.Shipment, error)
	Cancel(ctx context.Context, callerID, shipmentID int64) (*domain.Shipment, error)
	Complete(ctx context.Context, callerID, shipmentID int64) (*domain.Shipment, error)
}

type shipmentService struct {
	shipmentRepo repository.ShipmentRepository
	eventBus     events.Publisher
}

func NewShipmentService(shipmentRepo repository.ShipmentRepository, eventBus events.Publisher) ShipmentService {
	return &shipmentService{
		shipmentRepo: shipmentRepo,
		eventBus:     eventBus,
	}
}

func (s *shipmentService) Create(ctx context.Context, ownerID int64, req *domain.CreateShipmentRequest) (*domain.Shipment, error) {
	if ownerID == 0 {
		return nil, domain.NewValidationError("user_id", "is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	shipment, err := s.shipmentRepo.Create(ctx, ownerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	event := events.ShipmentCreatedEvent{
		ShipmentID:       shipment.ID,
		UserID:           shipment.UserID,
		PickupLocation:   shipment.PickupLocation,
		DeliveryLocation: shipment.DeliveryLocation,
		PickupDate:       shipment.PickupDate,
		CargoType:        shipment.CargoType,
		CreatedAt:        shipment.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.ShipmentCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish shipment created event", "error", err, "shipment_id", shipment.ID)
	}

	return shipment, nil
}

func (s *shipmentService) Get(ctx context.Context, id int64) (*domain.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	return shipment, nil
}

func (s *shipmentService) List(ctx context.Context, filter domain.ShipmentFilter, limit, offset int) ([]domain.Shipment, error) {
	shipments, err := s.shipmentRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	return shipments, nil
}

func (s *shipmentService) Cancel(ctx context.Context, callerID, shipmentID int64) (*domain.Shipment, error) {
	shipment, err := s.ownedShipment(ctx, callerID, shipmentID)
	if err != nil {
		return nil, err
	}
	if !shipment.CanCancel() {
		return nil, domain.ErrConflict
	}

	ok, err := s.shipmentRepo.UpdateStatus(ctx, shipmentID, shipment.Status, domain.ShipmentCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel shipment: %w", err)
	}
	if !ok {
		return nil, domain.ErrConflict
	}

	if err := s.eventBus.Publish(ctx, events.ShipmentCancelled, map[string]any{"shipment_id": shipmentID}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish shipment cancelled event", "error", err, "shipment_id", shipmentID)
	}

	return s.reload(ctx, shipmentID)
}

func (s *shipmentService) Complete(ctx context.Context, callerID, shipmentID int64) (*domain.Shipment, error) {
	shipment, err := s.ownedShipment(ctx, callerID, shipmentID)
	if err != nil {
		return nil, err
	}
	if !shipment.CanComplete() {
		return nil, domain.ErrConflict
	}

	ok, err := s.shipmentRepo.UpdateStatus(ctx, shipmentID, domain.ShipmentInTransit, domain.ShipmentCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete shipment: %w", err)
	}
	if !ok {
		return nil, domain.ErrConflict
	}

	if err := s.eventBus.Publish(ctx, events.ShipmentCompleted, map[string]any{"shipment_id": shipmentID}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish shipment completed event", "error", err, "shipment_id", shipmentID)
	}

	return s.reload(ctx, shipmentID)
}

// reload fetches the shipment after a transition so the caller sees the
// stored row rather than a locally patched copy.
func (s *shipmentService) reload(ctx context.Context, shipmentID int64) (*domain.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload shipment: %w", err)
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	return shipment, nil
}

func (s *shipmentService) ownedShipment(ctx context.Context, callerID, shipmentID int64) (*domain.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	if shipment.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	return shipment, nil
}
