package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// ListInvoices handles listing invoices, optionally filtered by status or booking
func (h *Handlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("bookingId"); v != "" {
		bookingID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid bookingId", "INVALID_INPUT")
			return
		}
		invoices, err := h.invoiceService.ListForBooking(r.Context(), bookingID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if invoices == nil {
			invoices = []domain.Invoice{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices})
		return
	}

	var status *domain.InvoiceStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, ok := domain.ParseInvoiceStatus(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown invoice status", "INVALID_INPUT")
			return
		}
		status = &parsed
	}

	limit, offset := parsePagination(r)
	invoices, err := h.invoiceService.List(r.Context(), status, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices})
}

// GetInvoice handles fetching a single invoice
func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice ID", "INVALID_INPUT")
		return
	}

	invoice, err := h.invoiceService.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invoice": invoice})
}

// CreateInvoice handles issuing an invoice against a booking
func (h *Handlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"invoice": invoice})
}

// UpdateInvoiceStatus handles invoice lifecycle transitions
func (h *Handlers) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice ID", "INVALID_INPUT")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Status is required", "INVALID_INPUT")
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(r.Context(), id, domain.InvoiceStatus(req.Status))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invoice": invoice})
}
