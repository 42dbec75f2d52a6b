package repositories

import (
	"context"
	"testing"
	"time"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"
)

func createChangeRequest(t *testing.T, s Store, memberID uint, field, value string) *models.ChangeRequest {
	t.Helper()
	cr := &models.ChangeRequest{
		MemberID:  memberID,
		FieldName: field,
		NewValue:  value,
		Status:    string(domain.ChangePending),
	}
	if err := s.ChangeRequests().Create(context.Background(), cr); err != nil {
		t.Fatalf("create change request: %v", err)
	}
	return cr
}

func TestListPendingScope(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	vadakara := createMember(t, s, "Vadakara", string(domain.StatusApproved))
	balusheri := createMember(t, s, "BALUSHERI", string(domain.StatusApproved))
	removed := createMember(t, s, "VADAKARA", string(domain.StatusApproved))

	first := createChangeRequest(t, s, vadakara.ID, "name", "New Name")
	createChangeRequest(t, s, balusheri.ID, "phone", "0551111111")
	second := createChangeRequest(t, s, vadakara.ID, "profession", "Engineer")
	createChangeRequest(t, s, removed.ID, "name", "Gone")

	reviewed := createChangeRequest(t, s, vadakara.ID, "emirate", "Dubai")
	now := time.Now()
	reviewed.Status = string(domain.ChangeApproved)
	reviewed.ReviewedAt = &now
	if err := s.ChangeRequests().Update(ctx, reviewed); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := db.Delete(removed).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	list, total, err := s.ChangeRequests().ListPending(ctx, domain.Scope{Mandalams: []string{"VADAKARA"}}, 0, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("total = %d, len = %d; want 2, 2", total, len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("order = [%d %d], want oldest first [%d %d]", list[0].ID, list[1].ID, first.ID, second.ID)
	}
	for _, cr := range list {
		if cr.Member == nil || cr.Member.ID != vadakara.ID {
			t.Errorf("request %d member not loaded: %+v", cr.ID, cr.Member)
		}
		if cr.FieldName == "" || cr.Status != string(domain.ChangePending) {
			t.Errorf("request %d columns not loaded: %+v", cr.ID, cr)
		}
	}

	all, total, err := s.ChangeRequests().ListPending(ctx, domain.Scope{All: true}, 0, 10)
	if err != nil {
		t.Fatalf("ListPending all: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("all scope total = %d, len = %d; want 3, 3", total, len(all))
	}

	page, total, err := s.ChangeRequests().ListPending(ctx, domain.Scope{All: true}, 2, 10)
	if err != nil {
		t.Fatalf("ListPending page: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Errorf("second page total = %d, len = %d; want 3, 1", total, len(page))
	}

	none, total, err := s.ChangeRequests().ListPending(ctx, domain.Scope{}, 0, 10)
	if err != nil {
		t.Fatalf("ListPending empty: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Errorf("empty scope total = %d, len = %d; want nothing", total, len(none))
	}
}

func TestChangeRequestUpdateLeavesMember(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	m := createMember(t, s, "VADAKARA", string(domain.StatusApproved))
	createChangeRequest(t, s, m.ID, "name", "Renamed")

	list, _, err := s.ChangeRequests().ListPending(ctx, domain.Scope{All: true}, 0, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListPending = %d, %v", len(list), err)
	}
	cr := list[0]
	cr.Member.Name = "edited through the relation"
	cr.Status = string(domain.ChangeRejected)
	if err := s.ChangeRequests().Update(ctx, cr); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Members().GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != m.Name {
		t.Errorf("member name = %q, saving a request must not write the member", got.Name)
	}
	history, err := s.ChangeRequests().ListByMember(ctx, m.ID)
	if err != nil || len(history) != 1 || history[0].Status != string(domain.ChangeRejected) {
		t.Errorf("history = %+v, %v", history, err)
	}
}

func TestBenefitTotalsByTypeScope(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	vadakara := createMember(t, s, "VADAKARA", string(domain.StatusApproved))
	balusheri := createMember(t, s, "BALUSHERI", string(domain.StatusApproved))

	add := func(memberID uint, typ domain.BenefitType, amount float64) *models.BenefitUsage {
		b := &models.BenefitUsage{
			MemberID:   memberID,
			Type:       string(typ),
			AmountPaid: amount,
			Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CreatedBy:  1,
		}
		if err := s.Benefits().Create(ctx, b); err != nil {
			t.Fatalf("create benefit: %v", err)
		}
		return b
	}
	add(vadakara.ID, domain.BenefitHospital, 500)
	add(vadakara.ID, domain.BenefitHospital, 250.5)
	add(vadakara.ID, domain.BenefitDeath, 10000)
	add(balusheri.ID, domain.BenefitHospital, 900)
	deleted := add(vadakara.ID, domain.BenefitCancer, 3000)
	if err := s.Benefits().Delete(ctx, deleted.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	totals, err := s.Benefits().TotalsByType(ctx, domain.Scope{Mandalams: []string{"vadakara"}})
	if err != nil {
		t.Fatalf("TotalsByType: %v", err)
	}
	if totals[string(domain.BenefitHospital)] != 750.5 || totals[string(domain.BenefitDeath)] != 10000 {
		t.Errorf("totals = %v", totals)
	}
	if _, ok := totals[string(domain.BenefitCancer)]; ok {
		t.Errorf("deleted benefit counted: %v", totals)
	}

	all, err := s.Benefits().TotalsByType(ctx, domain.Scope{All: true})
	if err != nil {
		t.Fatalf("TotalsByType all: %v", err)
	}
	if all[string(domain.BenefitHospital)] != 1650.5 {
		t.Errorf("all hospital total = %v, want 1650.5", all[string(domain.BenefitHospital)])
	}

	// benefits of removed members drop out of the totals
	if err := db.Delete(balusheri).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	all, err = s.Benefits().TotalsByType(ctx, domain.Scope{All: true})
	if err != nil {
		t.Fatalf("TotalsByType all: %v", err)
	}
	if all[string(domain.BenefitHospital)] != 750.5 {
		t.Errorf("hospital total after removal = %v, want 750.5", all[string(domain.BenefitHospital)])
	}
}
