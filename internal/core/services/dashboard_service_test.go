package services

import (
	"errors"
	"testing"

	"membership-portal/internal/core/domain"
)

func TestDashboardStatsScoped(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewDashboardService(f.store)

	f.member("VADAKARA", domain.StatusPending)
	paid := f.member("VADAKARA", domain.StatusApproved)
	paid.PaymentStatus = true
	if err := f.store.Members().Update(f.ctx, paid); err != nil {
		t.Fatal(err)
	}
	f.member("BALUSHERI", domain.StatusApproved)

	ma := f.admin(domain.RoleMandalamAdmin, "VADAKARA", nil)
	stats, err := svc.Stats(f.ctx, ma.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Members.Total != 2 || stats.Members.Paid != 1 || stats.Members.ByStatus["pending"] != 1 {
		t.Errorf("members = %+v", stats.Members)
	}
	if stats.ActiveYear != 2025 {
		t.Errorf("active year = %d", stats.ActiveYear)
	}
	if len(stats.BenefitTotals) != 0 {
		t.Error("mandalam admin should not see benefit totals")
	}

	if _, err := NewBenefitService(f.store).Add(f.ctx, f.admin(domain.RoleAdmin, "", nil).ID, paid.ID,
		BenefitInput{Type: domain.BenefitHospital, AmountPaid: 700}); err != nil {
		t.Fatal(err)
	}
	master := f.admin(domain.RoleMasterAdmin, "", nil)
	stats, err = svc.Stats(f.ctx, master.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.BenefitTotals[string(domain.BenefitHospital)] != 700 {
		t.Errorf("benefit totals = %v", stats.BenefitTotals)
	}

	user := f.member("VADAKARA", domain.StatusApproved)
	if _, err := svc.Stats(f.ctx, user.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user: err = %v", err)
	}
}
