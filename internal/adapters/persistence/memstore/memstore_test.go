package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

func seedMember(t *testing.T, s *Store, email, phone, eid, mandalam string) *models.Member {
	t.Helper()
	m := &models.Member{
		Name:       email,
		Email:      email,
		Phone:      phone,
		EmiratesID: eid,
		Mandalam:   mandalam,
		Status:     string(domain.StatusApproved),
	}
	if err := s.Members().Create(context.Background(), m); err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx repositories.Store) error {
		m.Name = "changed"
		if err := tx.Members().Update(ctx, m); err != nil {
			return err
		}
		if err := tx.Notifications().Create(ctx, &models.Notification{MemberID: m.ID, Title: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := s.Members().GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "a@example.com" {
		t.Errorf("name = %q, update was not rolled back", got.Name)
	}
	if n, _ := s.Notifications().CountUnread(ctx, m.ID); n != 0 {
		t.Errorf("unread = %d, notification was not rolled back", n)
	}
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")

	err := s.WithTx(ctx, func(tx repositories.Store) error {
		return tx.Notifications().Create(ctx, &models.Notification{MemberID: m.ID, Title: "hi"})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if n, _ := s.Notifications().CountUnread(ctx, m.ID); n != 1 {
		t.Errorf("unread = %d, want 1", n)
	}
}

func TestRollbackKeepsWritesMadeOutsideTx(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error)
	go func() {
		txDone <- s.WithTx(ctx, func(tx repositories.Store) error {
			if err := tx.Years().Create(ctx, &models.YearConfig{Year: 2030}); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("abort")
		})
	}()

	<-started
	outside := make(chan error)
	go func() {
		outside <- s.Notifications().Create(ctx, &models.Notification{MemberID: m.ID, Title: "outside"})
	}()

	select {
	case err := <-outside:
		t.Fatalf("write outside the transaction did not wait: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	close(release)

	if err := <-txDone; err == nil {
		t.Fatal("expected the transaction to fail")
	}
	if err := <-outside; err != nil {
		t.Fatalf("outside write: %v", err)
	}
	if n, _ := s.Notifications().CountUnread(ctx, m.ID); n != 1 {
		t.Errorf("unread = %d, outside write was lost", n)
	}
	if _, err := s.Years().GetByYear(ctx, 2030); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("year 2030: err = %v, want rolled back", err)
	}
}

func TestNestedWithTxJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")

	err := s.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.WithTx(ctx, func(inner repositories.Store) error {
			return inner.Notifications().Create(ctx, &models.Notification{MemberID: m.ID, Title: "inner"})
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if n, _ := s.Notifications().CountUnread(ctx, m.ID); n != 0 {
		t.Errorf("unread = %d, inner write survived the outer rollback", n)
	}
}

func TestFailOnInjectsError(t *testing.T) {
	ctx := context.Background()
	s := New()
	injected := errors.New("disk full")
	s.FailOn["notifications.CreateBatch"] = injected

	err := s.Notifications().CreateBatch(ctx, []*models.Notification{{MemberID: 1}})
	if !errors.Is(err, injected) {
		t.Fatalf("err = %v, want injected error", err)
	}
}

func TestMemberUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")

	dup := &models.Member{Email: "b@example.com", Phone: "0502", EmiratesID: "784000000000001"}
	if err := s.Members().Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want ErrDuplicatedKey", err)
	}

	exists, err := s.Members().ExistsByIdentity(ctx, "x@example.com", "0501", "784000000000009")
	if err != nil || !exists {
		t.Errorf("ExistsByIdentity by phone = %v, %v", exists, err)
	}
}

func TestMemberListScope(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")
	seedMember(t, s, "b@example.com", "0502", "784000000000002", "BALUSHERI")
	seedMember(t, s, "c@example.com", "0503", "784000000000003", "vadakara")

	tests := []struct {
		name  string
		scope domain.Scope
		want  int64
	}{
		{"all", domain.Scope{All: true}, 3},
		{"case insensitive", domain.Scope{Mandalams: []string{"Vadakara"}}, 2},
		{"other region", domain.Scope{Mandalams: []string{"BALUSHERI"}}, 1},
		{"empty", domain.Scope{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := s.Members().List(ctx, repositories.MemberFilter{Scope: tt.scope})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestMarkRenewalPending(t *testing.T) {
	ctx := context.Background()
	s := New()
	approved := seedMember(t, s, "a@example.com", "0501", "784000000000001", "VADAKARA")
	approved.PaymentStatus = true
	approved.PaymentApprovalStatus = string(domain.PaymentApproved)
	approved.PaymentYear = 2025
	if err := s.Members().Update(ctx, approved); err != nil {
		t.Fatal(err)
	}
	pending := seedMember(t, s, "b@example.com", "0502", "784000000000002", "VADAKARA")
	pending.Status = string(domain.StatusPending)
	if err := s.Members().Update(ctx, pending); err != nil {
		t.Fatal(err)
	}

	n, err := s.Members().MarkRenewalPending(ctx)
	if err != nil {
		t.Fatalf("MarkRenewalPending: %v", err)
	}
	if n != 1 {
		t.Errorf("moved = %d, want 1", n)
	}

	got, _ := s.Members().GetByID(ctx, approved.ID)
	if got.Status != string(domain.StatusRenewalPending) || got.PaymentStatus || got.PaymentYear != 0 {
		t.Errorf("approved member after rollover: status=%s paid=%v year=%d", got.Status, got.PaymentStatus, got.PaymentYear)
	}
	if !got.IsReregistration {
		t.Error("renewing member should be marked as re-registration")
	}
	other, _ := s.Members().GetByID(ctx, pending.ID)
	if other.Status != string(domain.StatusPending) {
		t.Errorf("pending member status = %s", other.Status)
	}
}

func TestActiveYearPicksActiveRow(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, y := range []int{2024, 2025} {
		if err := s.Years().Create(ctx, &models.YearConfig{Year: y}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Years().GetActive(ctx); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err := s.Years().Activate(ctx, 2024); err != nil {
		t.Fatal(err)
	}
	y, err := s.Years().GetActive(ctx)
	if err != nil || y.Year != 2024 {
		t.Fatalf("active = %+v, %v", y, err)
	}
}
