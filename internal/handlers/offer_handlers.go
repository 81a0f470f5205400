package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// ListOffers handles listing offers for a shipment
func (h *Handlers) ListOffers(w http.ResponseWriter, r *http.Request) {
	shipmentID, err := strconv.ParseInt(r.URL.Query().Get("shipmentId"), 10, 64)
	if err != nil || shipmentID == 0 {
		writeError(w, http.StatusBadRequest, "shipmentId is required", "INVALID_INPUT")
		return
	}

	offers, err := h.offerService.ListForShipment(r.Context(), shipmentID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if offers == nil {
		offers = []domain.Offer{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

// CreateOffer handles a driver submitting a bid against an open shipment
func (h *Handlers) CreateOffer(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing session", "UNAUTHORIZED")
		return
	}

	var req domain.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	offer, err := h.offerService.Create(r.Context(), claims.Sub, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"offer": offer})
}

// AcceptOffer handles the shipment owner accepting a bid
func (h *Handlers) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	h.resolveOffer(w, r, h.offerService.Accept)
}

// RejectOffer handles the shipment owner declining a bid
func (h *Handlers) RejectOffer(w http.ResponseWriter, r *http.Request) {
	h.resolveOffer(w, r, h.offerService.Reject)
}

func (h *Handlers) resolveOffer(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, callerID, offerID int64) (*domain.Offer, error),
) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing session", "UNAUTHORIZED")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offer ID", "INVALID_INPUT")
		return
	}

	offer, err := op(r.Context(), claims.Sub, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"offer": offer})
}
