package store

import (
	"context"
	"time"

	"property-management-backend/internal/model"
)

// DashboardSummary is the overview shown after login.
type DashboardSummary struct {
	TotalAddresses    int64                   `json:"total_addresses"`
	TotalResidents    int64                   `json:"total_residents"`
	PendingDues       float64                 `json:"pending_dues"`
	PendingComplaints int64                   `json:"pending_complaints"`
	ByCategory        map[string]int64        `json:"by_category"`
	ByBlock           map[string]int64        `json:"by_block"`
	RecentComplaints  []model.Complaint       `json:"recent_complaints"`
	RecentRecords     []model.FinancialRecord `json:"recent_records"`
}

const dashboardRecentLimit = 5

// Dashboard collects the overview figures.
func (s *gormStore) Dashboard(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	var (
		sum DashboardSummary
		err error
	)
	if sum.TotalAddresses, err = s.addresses.Count(ctx); err != nil {
		return nil, err
	}
	if sum.TotalResidents, err = s.residents.Count(ctx); err != nil {
		return nil, err
	}
	if sum.PendingDues, err = s.finance.TotalPendingDues(ctx, now); err != nil {
		return nil, err
	}
	if sum.PendingComplaints, err = s.complaints.PendingCount(ctx); err != nil {
		return nil, err
	}
	if sum.ByCategory, err = s.addresses.CountByCategory(ctx); err != nil {
		return nil, err
	}
	if sum.ByBlock, err = s.addresses.CountByBlock(ctx); err != nil {
		return nil, err
	}
	if sum.RecentComplaints, err = s.complaints.Recent(ctx, dashboardRecentLimit); err != nil {
		return nil, err
	}
	if sum.RecentRecords, err = s.finance.RecentRecords(ctx, dashboardRecentLimit); err != nil {
		return nil, err
	}
	return &sum, nil
}
