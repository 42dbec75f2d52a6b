package services

import (
	"errors"
	"testing"

	"membership-portal/internal/core/domain"
)

func TestFeeFor(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewPaymentService(f.store)

	fresh := f.member("VADAKARA", domain.StatusApproved)
	renewing := f.member("VADAKARA", domain.StatusApproved)
	renewing.IsReregistration = true
	imported := f.member("VADAKARA", domain.StatusApproved)
	imported.IsImported = true
	if err := f.store.Members().Update(f.ctx, renewing); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Members().Update(f.ctx, imported); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      uint
		want    int
		renewal bool
	}{
		{"new registration", fresh.ID, 60, false},
		{"re-registration", renewing.ID, 50, true},
		{"imported", imported.ID, 50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.FeeFor(f.ctx, tt.id)
			if err != nil {
				t.Fatalf("FeeFor: %v", err)
			}
			if q.Amount != tt.want || q.IsRenewal != tt.renewal || q.Year != 2025 {
				t.Errorf("quote = %+v, want amount %d renewal %v", q, tt.want, tt.renewal)
			}
		})
	}
}

func TestSubmitPaymentPreconditions(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewPaymentService(f.store)

	pending := f.member("VADAKARA", domain.StatusPending)
	approved := f.member("VADAKARA", domain.StatusApproved)

	if _, err := svc.SubmitPayment(f.ctx, approved.ID, 60, "  ", nil); !errors.Is(err, ErrRemarksRequired) {
		t.Errorf("blank remarks: err = %v", err)
	}
	if _, err := svc.SubmitPayment(f.ctx, approved.ID, 0, "bank transfer", nil); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v", err)
	}
	if _, err := svc.SubmitPayment(f.ctx, pending.ID, 60, "bank transfer", nil); !errors.Is(err, ErrMemberNotApproved) {
		t.Errorf("pending member: err = %v", err)
	}
	missing := uint(999)
	if _, err := svc.SubmitPayment(f.ctx, approved.ID, 60, "bank transfer", &missing); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("unknown recipient: err = %v", err)
	}

	resp, err := svc.SubmitPayment(f.ctx, approved.ID, 60, "bank transfer ref 42", nil)
	if err != nil {
		t.Fatalf("SubmitPayment: %v", err)
	}
	if resp.PaymentSubmission.ApprovalStatus != string(domain.PaymentPending) || resp.PaymentSubmission.Year != 2025 {
		t.Errorf("submission = %+v", resp.PaymentSubmission)
	}
	if resp.PaymentStatus {
		t.Error("submitting must not mark the member paid")
	}

	if _, err := svc.SubmitPayment(f.ctx, approved.ID, 60, "again", nil); !errors.Is(err, ErrPaymentAlreadySubmitted) {
		t.Errorf("second submission: err = %v", err)
	}
}

func TestResolvePayment(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewPaymentService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)

	t.Run("decline allows resubmission", func(t *testing.T) {
		m := f.member("VADAKARA", domain.StatusApproved)
		if _, err := svc.SubmitPayment(f.ctx, m.ID, 60, "cash", nil); err != nil {
			t.Fatal(err)
		}
		resp, err := svc.ResolvePayment(f.ctx, admin.ID, m.ID, false, "amount mismatch")
		if err != nil {
			t.Fatalf("ResolvePayment: %v", err)
		}
		if resp.PaymentStatus || resp.PaymentSubmission.ApprovalStatus != string(domain.PaymentDeclined) {
			t.Errorf("after decline: %+v", resp.PaymentSubmission)
		}
		if _, err := svc.SubmitPayment(f.ctx, m.ID, 60, "cash, corrected", nil); err != nil {
			t.Errorf("resubmit after decline: %v", err)
		}
	})

	t.Run("approve completes renewal", func(t *testing.T) {
		m := f.member("VADAKARA", domain.StatusRenewalPending)
		if _, err := svc.SubmitPayment(f.ctx, m.ID, 50, "renewal", nil); err != nil {
			t.Fatal(err)
		}
		resp, err := svc.ResolvePayment(f.ctx, admin.ID, m.ID, true, "")
		if err != nil {
			t.Fatalf("ResolvePayment: %v", err)
		}
		if !resp.PaymentStatus || resp.PaymentAmount != 50 {
			t.Errorf("paid = %v amount = %v", resp.PaymentStatus, resp.PaymentAmount)
		}
		if resp.Status != string(domain.StatusApproved) || resp.RegistrationYear != 2025 {
			t.Errorf("status = %s year = %d", resp.Status, resp.RegistrationYear)
		}
		if n := len(f.notifications(m.ID)); n != 1 {
			t.Errorf("notifications = %d, want 1", n)
		}
		if _, err := svc.ResolvePayment(f.ctx, admin.ID, m.ID, true, ""); !errors.Is(err, ErrNoPendingPayment) {
			t.Errorf("second approval: err = %v, want ErrNoPendingPayment", err)
		}
	})

	t.Run("mandalam admin cannot resolve", func(t *testing.T) {
		ma := f.admin(domain.RoleMandalamAdmin, "VADAKARA", nil)
		m := f.member("VADAKARA", domain.StatusApproved)
		if _, err := svc.SubmitPayment(f.ctx, m.ID, 60, "cash", nil); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.ResolvePayment(f.ctx, ma.ID, m.ID, true, ""); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})
}

func TestListPendingPaymentsScoped(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewPaymentService(f.store)

	for _, mandalam := range []string{"VADAKARA", "BALUSHERI", "BALUSHERI"} {
		m := f.member(mandalam, domain.StatusApproved)
		if _, err := svc.SubmitPayment(f.ctx, m.ID, 60, "cash", nil); err != nil {
			t.Fatal(err)
		}
	}
	custom := f.admin(domain.RoleCustomAdmin, "", &domain.CustomPermissions{
		CanManagePayments: true,
		MandalamAccess:    []string{"BALUSHERI"},
	})

	list, total, err := svc.ListPending(f.ctx, custom.ID, "", 0, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("total = %d len = %d, want 2", total, len(list))
	}

	_, total, err = svc.ListPending(f.ctx, custom.ID, "VADAKARA", 0, 10)
	if err != nil || total != 0 {
		t.Errorf("narrowing outside scope: total = %d err = %v, want 0", total, err)
	}
}
