package service

import (
	"context"
	"fmt"
	"math"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/repository"
)

type ReportService interface {
	GrossMargin(ctx context.Context, rng domain.ReportRange) (*domain.GrossMarginReport, error)
	BookingsByStatus(ctx context.Context) (map[string]int64, error)
	RevenueByMonth(ctx context.Context, limit int) ([]domain.MonthlyRevenue, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) GrossMargin(ctx context.Context, rng domain.ReportRange) (*domain.GrossMarginReport, error) {
	totals, err := s.reportRepo.MarginTotals(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to compute margin totals: %w", err)
	}

	marginTotal := totals.TotalRevenue - totals.SubcontractSpend

	// Percentage is defined as 0 when there is no revenue.
	var pct float64
	if totals.TotalRevenue > 0 {
		pct = round2(100 * marginTotal / totals.TotalRevenue)
	}

	return &domain.GrossMarginReport{
		BookingCount:          totals.BookingCount,
		TotalRevenue:          totals.TotalRevenue,
		SubcontractSpend:      totals.SubcontractSpend,
		GrossMarginTotal:      marginTotal,
		GrossMarginPercentage: pct,
	}, nil
}

func (s *reportService) BookingsByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.reportRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	return counts, nil
}

func (s *reportService) RevenueByMonth(ctx context.Context, limit int) ([]domain.MonthlyRevenue, error) {
	months, err := s.reportRepo.RevenueByMonth(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly revenue: %w", err)
	}
	return months, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
