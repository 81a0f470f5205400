package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// GrossMargin handles the gross margin report over delivered bookings
func (h *Handlers) GrossMargin(w http.ResponseWriter, r *http.Request) {
	var rng domain.ReportRange

	if v := r.URL.Query().Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD", "INVALID_INPUT")
			return
		}
		rng.From = &from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD", "INVALID_INPUT")
			return
		}
		rng.To = &to
	}

	report, err := h.reportService.GrossMargin(r.Context(), rng)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// BookingsByStatus handles the bookings-per-status report
func (h *Handlers) BookingsByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reportService.BookingsByStatus(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

// RevenueByMonth handles the monthly revenue report
func (h *Handlers) RevenueByMonth(w http.ResponseWriter, r *http.Request) {
	limit := 12
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	months, err := h.reportService.RevenueByMonth(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if months == nil {
		months = []domain.MonthlyRevenue{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"months": months})
}
