package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// ListShipments handles the shipments board listing
func (h *Handlers) ListShipments(w http.ResponseWriter, r *http.Request) {
	var filter domain.ShipmentFilter

	if v := r.URL.Query().Get("status"); v != "" {
		status, ok := domain.ParseShipmentStatus(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown shipment status", "INVALID_INPUT")
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("userId"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid userId", "INVALID_INPUT")
			return
		}
		filter.UserID = &userID
	}

	limit, offset := parsePagination(r)
	shipments, err := h.shipmentService.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if shipments == nil {
		shipments = []domain.Shipment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"shipments": shipments})
}

// GetShipment handles fetching a single shipment
func (h *Handlers) GetShipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shipment ID", "INVALID_INPUT")
		return
	}

	shipment, err := h.shipmentService.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"shipment": shipment})
}

// CreateShipment handles posting a new shipment to the board
func (h *Handlers) CreateShipment(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing session", "UNAUTHORIZED")
		return
	}

	var req domain.CreateShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	shipment, err := h.shipmentService.Create(r.Context(), claims.Sub, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"shipment": shipment})
}

// CancelShipment handles an owner withdrawing a shipment
func (h *Handlers) CancelShipment(w http.ResponseWriter, r *http.Request) {
	h.transitionShipment(w, r, h.shipmentService.Cancel)
}

// CompleteShipment handles an owner marking delivery complete
func (h *Handlers) CompleteShipment(w http.ResponseWriter, r *http.Request) {
	h.transitionShipment(w, r, h.shipmentService.Complete)
}

func (h *Handlers) transitionShipment(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, callerID, shipmentID int64) (*domain.Shipment, error),
) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing session", "UNAUTHORIZED")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shipment ID", "INVALID_INPUT")
		return
	}

	shipment, err := op(r.Context(), claims.Sub, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"shipment": shipment})
}
