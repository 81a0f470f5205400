package service

import (
	"context"
	"fmt"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/repository"
)

type FeedbackService interface {
	Create(ctx context.Context, req *domain.CreateFeedbackRequest) (*domain.Feedback, error)
	List(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo}
}

func (s *feedbackService) Create(ctx context.Context, req *domain.CreateFeedbackRequest) (*domain.Feedback, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	feedback, err := s.feedbackRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return feedback, nil
}

func (s *feedbackService) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	items, err := s.feedbackRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return items, nil
}
