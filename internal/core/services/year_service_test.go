package services

import (
	"errors"
	"testing"

	"membership-portal/internal/core/domain"
)

func TestCreateNewYearRollover(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewYearService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)

	paid := f.member("VADAKARA", domain.StatusApproved)
	paid.PaymentStatus = true
	paid.PaymentApprovalStatus = string(domain.PaymentApproved)
	paid.PaymentYear = 2025
	if err := f.store.Members().Update(f.ctx, paid); err != nil {
		t.Fatal(err)
	}
	pending := f.member("BALUSHERI", domain.StatusPending)

	res, err := svc.CreateNewYear(f.ctx, master.ID, 2026, 60, 50)
	if err != nil {
		t.Fatalf("CreateNewYear: %v", err)
	}

	years, _ := svc.ListYears(f.ctx)
	active := 0
	for _, y := range years {
		if y.IsActive {
			active++
			if y.Year != 2026 {
				t.Errorf("active year = %d, want 2026", y.Year)
			}
		}
	}
	if active != 1 {
		t.Errorf("active years = %d, want exactly one", active)
	}

	// master (approved) and paid move to renewal
	if res.MovedToRenewal != 2 {
		t.Errorf("moved = %d, want 2", res.MovedToRenewal)
	}
	after := f.reload(paid.ID)
	if after.Status != string(domain.StatusRenewalPending) || after.PaymentStatus || after.PaymentApprovalStatus != "" {
		t.Errorf("paid member after rollover: %+v", after.ToResponse().PaymentSubmission)
	}
	if got := f.reload(pending.ID).Status; got != string(domain.StatusPending) {
		t.Errorf("pending member status = %s", got)
	}

	for _, id := range []uint{master.ID, paid.ID, pending.ID} {
		list := f.notifications(id)
		if len(list) != 1 || list[0].Type != string(domain.NotifyRenewal) {
			t.Errorf("member %d notifications = %d, want one renewal notice", id, len(list))
		}
	}
	if res.Notified != 3 {
		t.Errorf("notified = %d, want 3", res.Notified)
	}

	fee, err := NewPaymentService(f.store).FeeFor(f.ctx, paid.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fee.Amount != domain.RenewalFee || fee.Year != 2026 {
		t.Errorf("fee after rollover = %+v", fee)
	}
}

func TestCreateNewYearIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewYearService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)
	m := f.member("VADAKARA", domain.StatusApproved)

	f.store.FailOn["notifications.CreateBatch"] = errors.New("insert failed")
	if _, err := svc.CreateNewYear(f.ctx, master.ID, 2026, 60, 50); err == nil {
		t.Fatal("expected rollover to fail")
	}
	delete(f.store.FailOn, "notifications.CreateBatch")

	y, err := svc.ActiveYear(f.ctx)
	if err != nil || y.Year != 2025 {
		t.Fatalf("active year = %v, %v; want 2025 kept", y, err)
	}
	if _, err := f.store.Years().GetByYear(f.ctx, 2026); err == nil {
		t.Error("2026 was created despite the failure")
	}
	if got := f.reload(m.ID).Status; got != string(domain.StatusApproved) {
		t.Errorf("member status = %s, want approved", got)
	}
	if n := len(f.notifications(m.ID)); n != 0 {
		t.Errorf("notifications = %d, want 0", n)
	}
}

func TestCreateNewYearGuards(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewYearService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)
	master := f.admin(domain.RoleMasterAdmin, "", nil)

	if _, err := svc.CreateNewYear(f.ctx, admin.ID, 2026, 60, 50); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("admin rollover: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.CreateNewYear(f.ctx, master.ID, 2025, 60, 50); !errors.Is(err, ErrYearExists) {
		t.Errorf("existing year: err = %v, want ErrYearExists", err)
	}
	if _, err := svc.CreateNewYear(f.ctx, master.ID, 1999, 60, 50); !errors.Is(err, ErrInvalidYear) {
		t.Errorf("bad year: err = %v, want ErrInvalidYear", err)
	}
}

func TestActivateYear(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewYearService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)

	if _, err := svc.CreateNewYear(f.ctx, master.ID, 2026, 60, 50); err != nil {
		t.Fatal(err)
	}
	if err := svc.ActivateYear(f.ctx, master.ID, 2025); err != nil {
		t.Fatalf("ActivateYear: %v", err)
	}
	y, _ := svc.ActiveYear(f.ctx)
	if y.Year != 2025 {
		t.Errorf("active = %d, want 2025", y.Year)
	}
	if err := svc.ActivateYear(f.ctx, master.ID, 2030); !errors.Is(err, ErrYearNotFound) {
		t.Errorf("missing year: err = %v", err)
	}
}
