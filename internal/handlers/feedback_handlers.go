package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// ListFeedback handles listing feedback entries, newest first
func (h *Handlers) ListFeedback(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	items, err := h.feedbackService.List(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Feedback{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"feedback": items})
}

// CreateFeedback handles submitting a feedback entry
func (h *Handlers) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	feedback, err := h.feedbackService.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"feedback": feedback})
}
