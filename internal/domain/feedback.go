package domain

import (
	"strings"
	"time"
)

// Feedback is append-only; there is no update or delete surface.
type Feedback struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	BookingID *int64    `json:"booking_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFeedbackRequest struct {
	UserID    *int64 `json:"user_id,omitempty"`
	BookingID *int64 `json:"booking_id,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

func (r *CreateFeedbackRequest) Normalize() {
	r.Comment = strings.TrimSpace(r.Comment)
}

func (r *CreateFeedbackRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}
