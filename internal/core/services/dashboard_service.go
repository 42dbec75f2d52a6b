package services

import (
	"context"
	"fmt"

	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"
)

// DashboardService aggregates admin statistics
type DashboardService struct {
	store repositories.Store
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store repositories.Store) *DashboardService {
	return &DashboardService{store: store}
}

// DashboardStats represents the admin dashboard, restricted to the actor's regions
type DashboardStats struct {
	Members               *repositories.MemberStats `json:"members"`
	PendingChangeRequests int64                     `json:"pending_change_requests"`
	BenefitTotals         map[string]float64        `json:"benefit_totals"`
	ActiveYear            int                       `json:"active_year"`
}

// Stats returns the dashboard for the actor
func (s *DashboardService) Stats(ctx context.Context, actorID uint) (*DashboardStats, error) {
	actor, err := requireCapability(ctx, s.store, actorID, domain.CanViewUsers)
	if err != nil {
		return nil, err
	}
	scope := domain.ScopeFor(actor)

	members, err := s.store.Members().Stats(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("member stats: %w", err)
	}

	stats := &DashboardStats{Members: members, BenefitTotals: map[string]float64{}}

	if domain.HasPermission(actor, domain.CanEditUsers) {
		_, pending, err := s.store.ChangeRequests().ListPending(ctx, scope, 0, 1)
		if err != nil {
			return nil, fmt.Errorf("pending change requests: %w", err)
		}
		stats.PendingChangeRequests = pending
	}

	if domain.HasPermission(actor, domain.CanManageBenefits) {
		totals, err := s.store.Benefits().TotalsByType(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("benefit totals: %w", err)
		}
		stats.BenefitTotals = totals
	}

	if y, err := activeYear(ctx, s.store); err == nil {
		stats.ActiveYear = y.Year
	}
	return stats, nil
}
