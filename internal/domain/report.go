package domain

import "time"

// GrossMarginReport covers delivered bookings whose pickup date falls in
// the requested range.
type GrossMarginReport struct {
	BookingCount          int64   `json:"booking_count"`
	TotalRevenue          float64 `json:"total_revenue"`
	SubcontractSpend      float64 `json:"subcontract_spend"`
	GrossMarginTotal      float64 `json:"gross_margin_total"`
	GrossMarginPercentage float64 `json:"gross_margin_percentage"`
}

type MonthlyRevenue struct {
	Month            time.Time `json:"month"`
	BookingCount     int64     `json:"booking_count"`
	TotalRevenue     float64   `json:"total_revenue"`
	SubcontractSpend float64   `json:"subcontract_spend"`
	GrossMargin      float64   `json:"gross_margin"`
}

type ReportRange struct {
	From *time.Time
	To   *time.Time
}
