package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// ListBookings handles the operational bookings listing
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	var status *domain.BookingStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, ok := domain.ParseBookingStatus(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown booking status", "INVALID_INPUT")
			return
		}
		status = &parsed
	}

	limit, offset := parsePagination(r)
	bookings, err := h.bookingService.List(r.Context(), status, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// GetBooking handles fetching a single booking
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking ID", "INVALID_INPUT")
		return
	}

	booking, err := h.bookingService.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

// CreateBooking handles recording a confirmed job
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	booking, err := h.bookingService.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"booking": booking})
}

// UpdateBooking handles partial updates to a booking
func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking ID", "INVALID_INPUT")
		return
	}

	var patch domain.BookingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	booking, err := h.bookingService.Update(r.Context(), id, patch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

// DeleteBooking handles removing a booking
func (h *Handlers) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking ID", "INVALID_INPUT")
		return
	}

	if err := h.bookingService.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
