package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/service"
	"github.com/xdrive/xdrive-logistics/pkg/events"
)

type mockShipmentRepo struct {
	nextID    int64
	shipments map[int64]*domain.Shipment

	// When set, the shipment vanishes once its status has been updated,
	// simulating a concurrent delete between write and reload.
	dropAfterUpdate bool
	// When set, reads start failing after a successful status update.
	errAfterUpdate error
	getErr         error
}

func newMockShipmentRepo() *mockShipmentRepo {
	return &mockShipmentRepo{nextID: 1, shipments: make(map[int64]*domain.Shipment)}
}

func (m *mockShipmentRepo) Create(_ context.Context, userID int64, req *domain.CreateShipmentRequest) (*domain.Shipment, error) {
	shipment := &domain.Shipment{
		ID:               m.nextID,
		UserID:           userID,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		CargoType:        req.CargoType,
		Status:           domain.ShipmentOpen,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if req.PickupDate != nil {
		shipment.PickupDate = *req.PickupDate
	}
	m.nextID++
	m.shipments[shipment.ID] = shipment
	return shipment, nil
}

func (m *mockShipmentRepo) GetByID(_ context.Context, id int64) (*domain.Shipment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	shipment, exists := m.shipments[id]
	if !exists {
		return nil, nil
	}
	copied := *shipment
	return &copied, nil
}

func (m *mockShipmentRepo) List(_ context.Context, filter domain.ShipmentFilter, limit, offset int) ([]domain.Shipment, error) {
	var result []domain.Shipment
	for _, s := range m.shipments {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShipmentRepo) UpdateStatus(_ context.Context, id int64, from, to domain.ShipmentStatus) (bool, error) {
	shipment, exists := m.shipments[id]
	if !exists || shipment.Status != from {
		return false, nil
	}
	shipment.Status = to
	if m.dropAfterUpdate {
		delete(m.shipments, id)
	}
	if m.errAfterUpdate != nil {
		m.getErr = m.errAfterUpdate
	}
	return true, nil
}

func newTestShipment(t *testing.T, repo *mockShipmentRepo, ownerID int64) *domain.Shipment {
	t.Helper()
	pickup := time.Now().Add(24 * time.Hour)
	shipment, err := repo.Create(context.Background(), ownerID, &domain.CreateShipmentRequest{
		PickupLocation:   "A",
		DeliveryLocation: "B",
		PickupDate:       &pickup,
	})
	if err != nil {
		t.Fatalf("Failed to seed shipment: %v", err)
	}
	return shipment
}

func TestShipmentCancel_ReturnsStoredRow(t *testing.T) {
	repo := newMockShipmentRepo()
	svc := service.NewShipmentService(repo, events.NoopPublisher{})

	shipment := newTestShipment(t, repo, 7)

	cancelled, err := svc.Cancel(context.Background(), 7, shipment.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled == nil || cancelled.Status != domain.ShipmentCancelled {
		t.Fatalf("Expected cancelled shipment, got %+v", cancelled)
	}
}

func TestShipmentCancel_RowGoneAfterUpdate_NotFound(t *testing.T) {
	repo := newMockShipmentRepo()
	repo.dropAfterUpdate = true
	svc := service.NewShipmentService(repo, events.NoopPublisher{})

	shipment := newTestShipment(t, repo, 7)

	got, err := svc.Cancel(context.Background(), 7, shipment.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if got != nil {
		t.Fatalf("Expected nil shipment with error, got %+v", got)
	}
}

func TestShipmentComplete_ReloadErrorIsWrapped(t *testing.T) {
	repo := newMockShipmentRepo()
	svc := service.NewShipmentService(repo, events.NoopPublisher{})

	shipment := newTestShipment(t, repo, 7)
	repo.shipments[shipment.ID].Status = domain.ShipmentInTransit

	// Ownership check reads fine; only the reload after the write fails.
	repoErr := errors.New("connection reset")
	repo.errAfterUpdate = repoErr

	_, err := svc.Complete(context.Background(), 7, shipment.ID)
	if !errors.Is(err, repoErr) {
		t.Fatalf("Expected wrapped repo error, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Reload failure must not read as not-found: %v", err)
	}
}
