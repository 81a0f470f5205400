package service

import (
	"context"
	"fmt"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/pkg/events"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type BookingService interface {
	Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	eventBus    events.Publisher
}

func NewBookingService(bookingRepo repository.BookingRepository, eventBus events.Publisher) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		eventBus:    eventBus,
	}
}

func (s *bookingService) Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	event := events.BookingCreatedEvent{
		BookingID:   booking.ID,
		LoadID:      booking.LoadID,
		FromAddress: booking.FromAddress,
		ToAddress:   booking.ToAddress,
		PickupDate:  booking.PickupDate,
		CreatedAt:   booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, id int64) error {
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if err == domain.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
